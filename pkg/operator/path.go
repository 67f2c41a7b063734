package operator

import (
	"path"
	"strings"
)

// NormalizePath converts p into the operator path form.
//
// Operator paths are relative and slash-separated. Directories end with "/".
// The root is "/". Leading slashes, "." and ".." elements and repeated slashes
// are removed; a trailing slash is preserved.
//
//	NormalizePath("")          => "/"
//	NormalizePath("/a//b/")    => "a/b/"
//	NormalizePath("/a/./b.txt") => "a/b.txt"
func NormalizePath(p string) string {
	isDir := p == "" || strings.HasSuffix(p, "/")

	cleaned := strings.TrimPrefix(path.Clean("/"+p), "/")
	if cleaned == "" {
		return "/"
	}
	if isDir {
		return cleaned + "/"
	}
	return cleaned
}

// IsDirPath reports whether p names a directory.
func IsDirPath(p string) bool {
	return strings.HasSuffix(p, "/")
}

// DirPath returns p in directory form.
func DirPath(p string) string {
	p = NormalizePath(p)
	if IsDirPath(p) {
		return p
	}
	return p + "/"
}

// BaseName returns the last element of an operator path, keeping the trailing
// slash of directories. The root's name is "/".
func BaseName(p string) string {
	if p == "/" || p == "" {
		return "/"
	}
	trimmed := strings.TrimSuffix(p, "/")
	name := trimmed[strings.LastIndex(trimmed, "/")+1:]
	if IsDirPath(p) {
		return name + "/"
	}
	return name
}

// JoinRoot prefixes an operator path with a service root.
//
// root is normalized to directory form; the result never starts with "/".
// For the operator root "/" the root itself is returned ("" when root is empty).
func JoinRoot(root, p string) string {
	r := strings.Trim(path.Clean("/"+root), "/")
	if r != "" {
		r += "/"
	}
	if p == "/" {
		return r
	}
	return r + p
}

// FirstLevel maps rest, a key suffix below the listed directory dir, to the
// direct child of dir it belongs to. implicit is true when rest lies more than
// one level deep, so the child is a directory known only through its
// descendants.
//
//	FirstLevel("a/", "b.txt")   => "a/b.txt", false
//	FirstLevel("a/", "sub/")    => "a/sub/", false
//	FirstLevel("a/", "sub/x")   => "a/sub/", true
//	FirstLevel("/", "top/x/y")  => "top/", true
func FirstLevel(dir, rest string) (child string, implicit bool) {
	if idx := strings.Index(rest, "/"); idx >= 0 && idx < len(rest)-1 {
		rest = rest[:idx+1]
		implicit = true
	}
	if dir == "/" {
		return rest, implicit
	}
	return dir + rest, implicit
}
