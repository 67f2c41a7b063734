package operator

// SliceRange returns a copy of data[offset:offset+size], clamped to the data
// length. A negative size means "to the end"; an offset at or past the end
// yields an empty slice.
func SliceRange(data []byte, offset, size int64) []byte {
	length := int64(len(data))
	if offset >= length {
		return []byte{}
	}
	end := length
	if size >= 0 && offset+size < length {
		end = offset + size
	}
	out := make([]byte, end-offset)
	copy(out, data[offset:end])
	return out
}
