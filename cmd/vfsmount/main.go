//go:build fuse

// Command vfsmount mounts a disk.img-backed virtual filesystem onto a
// host directory via FUSE, for exercising the in-memory VFS with real
// filesystem tools.
package main

import (
	"fmt"
	"os"

	vfs "github.com/emelab406/vfs-permission-system"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: vfsmount <mountpoint> [disk.img]")
		os.Exit(1)
	}
	mountpoint := os.Args[1]
	imagePath := "disk.img"
	if len(os.Args) > 2 {
		imagePath = os.Args[2]
	}

	fsys := vfs.New()
	if _, err := os.Stat(imagePath); err == nil {
		if verr := vfs.LoadImage(fsys, imagePath); verr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", imagePath, verr)
		} else if verr := vfs.MetaLoad(fsys); verr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to load metadata: %v\n", verr)
		}
	}

	server, err := vfs.Mount(fsys, mountpoint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mount: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("mounted on %s, ctrl-c to unmount\n", mountpoint)
	server.Wait()
}
