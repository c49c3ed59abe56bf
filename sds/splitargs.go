package sds

import (
	"github.com/pkg/errors"
)

// ErrUnbalancedQuotes is returned by SplitArgs when the line contains
// an unterminated quote.
var ErrUnbalancedQuotes = errors.New("sds: unbalanced quotes in line")

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexDigitValue(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\v' || c == '\f'
}

// SplitArgs parses a shell-like quoted line into tokens. Double-quoted
// strings support \xHH, \n, \r, \t, \b, \a, \\, \" escapes; single
// quoted strings support only \\ and \'. An unterminated quote fails.
func SplitArgs(line string) ([]string, error) {
	p := 0
	n := len(line)
	var result []string

	for {
		for p < n && isSpace(line[p]) {
			p++
		}
		if p >= n {
			break
		}

		inQ := false
		inSQ := false
		var cur []byte

	tokenLoop:
		for {
			if inQ {
				switch {
				case p < n && line[p] == '\\' && p+1 < n && line[p+1] == 'x' && p+3 < n &&
					isHexDigit(line[p+2]) && isHexDigit(line[p+3]):
					b := hexDigitValue(line[p+2])<<4 | hexDigitValue(line[p+3])
					cur = append(cur, b)
					p += 4
				case p < n && line[p] == '\\' && p+1 < n:
					var c byte
					switch line[p+1] {
					case 'n':
						c = '\n'
					case 'r':
						c = '\r'
					case 't':
						c = '\t'
					case 'b':
						c = '\b'
					case 'a':
						c = '\a'
					default:
						c = line[p+1]
					}
					cur = append(cur, c)
					p += 2
				case p < n && line[p] == '"':
					// closing quote must be followed by space or end
					if p+1 < n && !isSpace(line[p+1]) {
						return nil, ErrUnbalancedQuotes
					}
					p++
					break tokenLoop
				case p >= n:
					return nil, ErrUnbalancedQuotes
				default:
					cur = append(cur, line[p])
					p++
				}
			} else if inSQ {
				switch {
				case p < n && line[p] == '\\' && p+1 < n && line[p+1] == '\'':
					cur = append(cur, '\'')
					p += 2
				case p < n && line[p] == '\\' && p+1 < n && line[p+1] == '\\':
					cur = append(cur, '\\')
					p += 2
				case p < n && line[p] == '\'':
					if p+1 < n && !isSpace(line[p+1]) {
						return nil, ErrUnbalancedQuotes
					}
					p++
					break tokenLoop
				case p >= n:
					return nil, ErrUnbalancedQuotes
				default:
					cur = append(cur, line[p])
					p++
				}
			} else {
				if p >= n || isSpace(line[p]) {
					break tokenLoop
				}
				switch {
				case line[p] == '"':
					inQ = true
					p++
				case line[p] == '\'':
					inSQ = true
					p++
				case line[p] == '\\' && p+3 < n && line[p+1] == 'x' &&
					isHexDigit(line[p+2]) && isHexDigit(line[p+3]):
					b := hexDigitValue(line[p+2])<<4 | hexDigitValue(line[p+3])
					cur = append(cur, b)
					p += 4
				default:
					cur = append(cur, line[p])
					p++
				}
			}
		}

		result = append(result, string(cur))
	}

	return result, nil
}
