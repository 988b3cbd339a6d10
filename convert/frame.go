package convert

import (
	"github.com/google/renameio/v2"
)

// FlipRows copies src into dst with the row order reversed. Both hold
// width*height RGBA pixels; src row i lands on dst row height-1-i, so a
// bottom-up GPU read-back becomes a top-down image.
func FlipRows(dst, src []byte, width, height int) {
	stride := width * 4
	for i := 0; i < height; i++ {
		from := src[i*stride : (i+1)*stride]
		to := dst[(height-1-i)*stride : (height-i)*stride]
		copy(to, from)
	}
}

// writeFile replaces path atomically, so a failed write never leaves a
// partial image behind.
func writeFile(path string, data []byte) error {
	return renameio.WriteFile(path, data, 0o644)
}
