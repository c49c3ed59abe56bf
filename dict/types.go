package dict

import "github.com/rkvcore/rkv/hashfn"

func stringHash(key interface{}) uint32 {
	return hashfn.Sum([]byte(key.(string)))
}

func stringCaseInsensitiveHash(key interface{}) uint32 {
	return hashfn.SumCaseInsensitive([]byte(key.(string)))
}

func stringsEqual(_ interface{}, a, b interface{}) bool {
	return a.(string) == b.(string)
}

// StringKeyType is a ready-made vtable for string keys with no value
// lifecycle: keys are stored by value (Go strings are already
// immutable and cheap to copy), and values are stored as given with
// no duplication or destruction. This mirrors the original library's
// dictTypeHeapStringCopyKey preset.
var StringKeyType = &Type{
	HashFunction: stringHash,
	KeyCompare:   stringsEqual,
}

// StringKeyValueType additionally destroys values on overwrite/delete
// via the supplied destructor, mirroring
// dictTypeHeapStringCopyKeyValue. Pass nil for ValDestructor to get
// dictTypeHeapStrings' behavior (keys and values both plain strings,
// no destructors at all).
func StringKeyValueType(valDestructor func(privdata, val interface{})) *Type {
	return &Type{
		HashFunction:  stringHash,
		KeyCompare:    stringsEqual,
		ValDestructor: valDestructor,
	}
}

// CaseInsensitiveStringKeyType hashes and compares string keys
// case-insensitively, using the case-insensitive built-in mixer.
var CaseInsensitiveStringKeyType = &Type{
	HashFunction: stringCaseInsensitiveHash,
	KeyCompare: func(_ interface{}, a, b interface{}) bool {
		return asciiEqualFold(a.(string), b.(string))
	},
}

func asciiEqualFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
