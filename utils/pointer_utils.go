package utils

// UintPtr returns a pointer to the given uint
func UintPtr(v uint) *uint {
	return &v
}

// BoolPtr returns a pointer to the given bool
func BoolPtr(v bool) *bool {
	return &v
}
