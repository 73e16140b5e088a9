package vfs

import "strconv"

// User is a static user-table record. Grounded on
// original_source/src/fs/perm.c's g_users table.
type User struct {
	Name     string
	Uid      uint32
	Gid      uint32
	Password string
}

// defaultUsers is the reference user table from spec.md §3.
var defaultUsers = []User{
	{Name: "root", Uid: 0, Gid: 0, Password: "root"},
	{Name: "user", Uid: 1000, Gid: 100, Password: "user"},
}

// LookupUser returns the user-table entry for name, or nil if absent.
func LookupUser(name string) *User {
	for i := range defaultUsers {
		if defaultUsers[i].Name == name {
			return &defaultUsers[i]
		}
	}
	return nil
}

// Authenticate compares password against the stored table entry for
// the given user. Used only by the external shell (spec.md §4.3).
func Authenticate(u *User, password string) bool {
	if u == nil {
		return false
	}
	return u.Password == password
}

// UidName and GidName render a uid/gid for ls -l display, matching
// original_source/src/fs/perm.c's fs_uid_name/fs_gid_name (only root
// and the single reference non-root user are named; anything else
// is rendered as its decimal number).
func UidName(uid uint32) string {
	switch uid {
	case 0:
		return "root"
	case 1000:
		return "user"
	}
	return strconv.FormatUint(uint64(uid), 10)
}

func GidName(gid uint32) string {
	switch gid {
	case 0:
		return "root"
	case 100:
		return "users"
	}
	return strconv.FormatUint(uint64(gid), 10)
}
