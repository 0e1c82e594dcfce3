// Package glsl has GL-free helpers for preparing shader sources and reading driver
// version strings.
package glsl

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Version is a parsed GL_VERSION string.
type Version struct {
	Major, Minor int
	ES           bool
}

func (v Version) String() string {
	if v.ES {
		return fmt.Sprintf("OpenGL ES %d.%d", v.Major, v.Minor)
	}
	return fmt.Sprintf("OpenGL %d.%d", v.Major, v.Minor)
}

// ParseVersion reads strings such as "4.1 Metal - 83.1", "3.0 Mesa 23.0.4" or
// "OpenGL ES 3.2 NVIDIA 535".
func ParseVersion(s string) (Version, error) {
	var v Version
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "OpenGL ES"); ok {
		v.ES = true
		s = strings.TrimSpace(rest)
		if i := strings.IndexByte(s, ' '); i >= 0 && strings.HasPrefix(s, "-") {
			// "OpenGL ES-CM 1.1"
			s = s[i+1:]
		}
	}
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	parts := strings.SplitN(s, ".", 3)
	if len(parts) < 2 {
		return v, fmt.Errorf("invalid GL version %q", s)
	}
	var err error
	if v.Major, err = strconv.Atoi(parts[0]); err != nil {
		return v, fmt.Errorf("invalid GL version %q: %w", s, err)
	}
	if v.Minor, err = strconv.Atoi(parts[1]); err != nil {
		return v, fmt.Errorf("invalid GL version %q: %w", s, err)
	}
	return v, nil
}

// InjectDefines inserts a #define line per entry right after the #version directive, or
// at the top when there is none. Names are emitted in sorted order.
func InjectDefines(src string, defines map[string]string) string {
	if len(defines) == 0 {
		return src
	}
	names := make([]string, 0, len(defines))
	for n := range defines {
		names = append(names, n)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, n := range names {
		fmt.Fprintf(&b, "#define %s %s\n", n, defines[n])
	}

	trimmed := strings.TrimLeft(src, " \t\r\n")
	if strings.HasPrefix(trimmed, "#version") {
		i := strings.IndexByte(trimmed, '\n')
		if i < 0 {
			return trimmed + "\n" + b.String()
		}
		return trimmed[:i+1] + b.String() + trimmed[i+1:]
	}
	return b.String() + src
}
