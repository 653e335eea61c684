package badger

import "encoding/binary"

// Key Namespace
// =============
//
// Objects are stored as two entries sharing the same suffix:
//
//	Data Type      Prefix   Key Format              Value
//	==========================================================
//	Object body    "o:"     o:<bucket>\x00<key>     raw bytes
//	Object size    "s:"     s:<bucket>\x00<key>     uint64 (big-endian)
//
// The size entry lets Stat answer without loading the body. Bucket names
// cannot contain NUL, so the separator keeps bucket/key pairs unambiguous
// even when keys contain "/".

const (
	prefixBody = "o:"
	prefixSize = "s:"
	separator  = "\x00"
)

func keyBody(bucket, key string) []byte {
	return []byte(prefixBody + bucket + separator + key)
}

func keySize(bucket, key string) []byte {
	return []byte(prefixSize + bucket + separator + key)
}

func encodeSize(n uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, n)
}

func decodeSize(b []byte) (uint64, bool) {
	if len(b) != 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(b), true
}
