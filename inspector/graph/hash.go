package graph

import (
	"github.com/minio/highwayhash"
)

var key = []byte("temporalgraph-fingerprint-key-32")

// Fingerprint returns a stable 64-bit digest of workflow source and class name
func Fingerprint(src []byte, class string) (uint64, error) {
	hash, err := highwayhash.New64(key)
	if err != nil {
		return 0, err
	}
	if _, err = hash.Write([]byte(class)); err != nil {
		return 0, err
	}
	_, err = hash.Write(src)
	return hash.Sum64(), err
}
