package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zjrosen/scribe/internal/document"
)

func TestEncodeDecode(t *testing.T) {
	line := "a😀b"
	tests := []struct {
		enc     Encoding
		byteCol int
		char    int
	}{
		{UTF8, 5, 5},
		{UTF16, 5, 3},
		{UTF32, 5, 2},
		{UTF16, 6, 4},
		{UTF16, 1, 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.enc), func(t *testing.T) {
			assert.Equal(t, tt.char, tt.enc.Encode(line, tt.byteCol))
			assert.Equal(t, tt.byteCol, tt.enc.Decode(line, tt.char))
		})
	}
}

func TestDecodeClamps(t *testing.T) {
	line := "a😀b"
	assert.Equal(t, 1, UTF16.Decode(line, 2), "inside a surrogate pair")
	assert.Equal(t, len(line), UTF16.Decode(line, 99))
	assert.Equal(t, 0, UTF16.Decode(line, -1))
	assert.Equal(t, 3, UTF16.EncodeString("é😀"))
}

func TestDocumentPositions(t *testing.T) {
	d := document.FromString("x := \"é\"\nnext", document.MultiLine)
	p := UTF16.ToLSP(d, document.Pos(8, 0))
	assert.Equal(t, Position{Line: 0, Character: 7}, p)
	assert.Equal(t, document.Pos(8, 0), UTF16.FromLSP(d, p))
	assert.Equal(t, d.End(), UTF16.FromLSP(d, Position{Line: 10, Character: 0}))
}

func TestURIRoundTrip(t *testing.T) {
	uri := URIFromPath("/tmp/some dir/main.go")
	assert.Equal(t, "file:///tmp/some%20dir/main.go", uri)
	path, err := PathFromURI(uri)
	assert.NoError(t, err)
	assert.Equal(t, "/tmp/some dir/main.go", path)

	_, err = PathFromURI("https://example.com/x")
	assert.Error(t, err)
}
