package httpapi

import (
	"compress/gzip"
	"compress/zlib"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CompressibleBody transparently decodes a gzip- or deflate-encoded
// request body before any handler reads it. Any other Content-Encoding,
// including none, passes the body through unchanged.
func CompressibleBody() gin.HandlerFunc {
	return compressibleBody
}

func compressibleBody(c *gin.Context) {
	switch c.GetHeader("Content-Encoding") {
	case "gzip":
		zr, err := gzip.NewReader(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid gzip body: " + err.Error()})
			return
		}
		c.Request.Body = wrapBody(zr, c.Request.Body)
	case "deflate":
		zr, err := zlib.NewReader(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid deflate body: " + err.Error()})
			return
		}
		c.Request.Body = wrapBody(zr, c.Request.Body)
	}
	c.Next()
}

// decodedBody reads from a decompressor but closes both it and the raw
// underlying body it wraps.
type decodedBody struct {
	io.Reader
	decoder io.Closer
	raw     io.Closer
}

func (b *decodedBody) Close() error {
	err := b.decoder.Close()
	if rawErr := b.raw.Close(); err == nil {
		err = rawErr
	}
	return err
}

func wrapBody(decoder interface {
	io.Reader
	io.Closer
}, raw io.ReadCloser) io.ReadCloser {
	return &decodedBody{Reader: decoder, decoder: decoder, raw: raw}
}
