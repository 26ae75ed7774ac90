// Package xmlname provides XML name-token validation and identifier
// case conversion shared by the binding core and the code generator.
package xmlname

// IsNCName reports whether s is a valid XML non-colonized name
// (an element or attribute local name).
func IsNCName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !isNameStart(r) {
				return false
			}
			continue
		}
		if !isNameChar(r) {
			return false
		}
	}
	return true
}

// IsName reports whether s is a valid XML name. Unlike IsNCName,
// colons are permitted (QName form).
func IsName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if r != ':' && !isNameStart(r) {
				return false
			}
			continue
		}
		if r != ':' && !isNameChar(r) {
			return false
		}
	}
	return true
}

// SplitQName splits a prefixed name into its prefix and local part.
// A name without a colon has an empty prefix.
func SplitQName(s string) (prefix, local string) {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return s[:i], s[i+1:]
		}
	}
	return "", s
}

func isNameStart(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		return true
	case r >= 0xC0 && r <= 0xD6, r >= 0xD8 && r <= 0xF6, r >= 0xF8 && r <= 0x2FF:
		return true
	case r >= 0x370 && r <= 0x37D, r >= 0x37F && r <= 0x1FFF:
		return true
	case r >= 0x200C && r <= 0x200D, r >= 0x2070 && r <= 0x218F:
		return true
	case r >= 0x2C00 && r <= 0x2FEF, r >= 0x3001 && r <= 0xD7FF:
		return true
	case r >= 0xF900 && r <= 0xFDCF, r >= 0xFDF0 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0xEFFFF:
		return true
	}
	return false
}

func isNameChar(r rune) bool {
	if isNameStart(r) {
		return true
	}
	switch {
	case r >= '0' && r <= '9', r == '-', r == '.', r == 0xB7:
		return true
	case r >= 0x300 && r <= 0x36F, r >= 0x203F && r <= 0x2040:
		return true
	}
	return false
}
