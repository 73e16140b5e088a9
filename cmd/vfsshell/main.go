// Command vfsshell is an interactive shell over an in-process virtual
// filesystem backed by a fixed-size RAM block device, persisted to
// disk.img between runs.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	vfs "github.com/emelab406/vfs-permission-system"
)

const imagePath = "disk.img"

const usage = `Commands:
  help                       show this message
  exit                       save and quit
  df                         show block usage
  id                         show current uid/gid
  sudo <cmd>                 run <cmd> as uid 0
  su [name]                  switch user (default: root)
  ls [path]                  list directory
  tree [path]                recursive listing
  cd <path>                  change directory
  mkdir <path>               create directory
  rmdir <path>               remove empty directory
  touch <path>               create empty file
  stat <path>                show inode fields
  cp <src> <dst>             copy a file
  write <path> <text...>     overwrite file content
  vim <path>                 not supported in this build
  cat <path>                 print file content
  rm <path>                  remove a file
  chmod <octal> <path>       change permission bits (uid 0 only)
  import <host> <vpath>      load a host file into the VFS
  export <vpath> <host>      write a VFS file to the host
`

func main() {
	fsys := vfs.New()
	fc := vfs.NewContext(fsys, 0, 0)

	if _, err := os.Stat(imagePath); err == nil {
		if verr := vfs.LoadImage(fsys, imagePath); verr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", imagePath, verr)
		} else if verr := vfs.MetaLoad(fsys); verr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to load metadata: %v\n", verr)
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("vfs> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			dispatch(fc, line)
		}
		if line == "exit" {
			return
		}
		fmt.Print("vfs> ")
	}

	save(fsys)
}

func dispatch(fc *vfs.FsContext, line string) {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "help":
		fmt.Print(usage)
	case "exit":
		save(fc.FS)
	case "df":
		cmdDf(fc)
	case "id":
		fmt.Printf("uid=%d(%s) gid=%d(%s)\n", fc.Uid, vfs.UidName(fc.Uid), fc.Gid, vfs.GidName(fc.Gid))
	case "sudo":
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "usage: sudo <cmd>")
			return
		}
		restore := fc.Sudo()
		defer restore()
		dispatch(fc, strings.Join(args, " "))
	case "su":
		cmdSu(fc, args)
	case "ls":
		cmdLs(fc, args)
	case "tree":
		cmdTree(fc, args)
	case "cd":
		cmdCd(fc, args)
	case "mkdir":
		cmdMkdir(fc, args)
	case "rmdir":
		cmdRmdir(fc, args)
	case "touch":
		cmdTouch(fc, args)
	case "stat":
		cmdStat(fc, args)
	case "cp":
		cmdCp(fc, args)
	case "write":
		cmdWrite(fc, args)
	case "vim":
		fmt.Println("vim: not supported in this build")
	case "cat":
		cmdCat(fc, args)
	case "rm":
		cmdRm(fc, args)
	case "chmod":
		cmdChmod(fc, args)
	case "import":
		cmdImport(fc, args)
	case "export":
		cmdExport(fc, args)
	default:
		fmt.Printf("Unknown command: %s\n", cmd)
	}
}

func save(fsys *vfs.FS) {
	if verr := vfs.MetaSave(fsys); verr != nil {
		fmt.Fprintf(os.Stderr, "error saving metadata: %v\n", verr)
	}
	if verr := vfs.SaveImage(fsys, imagePath); verr != nil {
		fmt.Fprintf(os.Stderr, "error saving %s: %v\n", imagePath, verr)
	}
}

func cmdDf(fc *vfs.FsContext) {
	fmt.Printf("%-10s %10s %10s %10s\n", "Filesystem", "Blocks", "Used", "Free")
	fmt.Printf("%-10s %10d %10d %10d\n", "vfs", fc.FS.TotalBlocks(), fc.FS.UsedBlocks(), fc.FS.FreeBlocks())
}

func cmdSu(fc *vfs.FsContext, args []string) {
	name := "root"
	if len(args) > 0 {
		name = args[0]
	}
	u := vfs.LookupUser(name)
	if u == nil {
		fmt.Fprintf(os.Stderr, "su: no such user: %s\n", name)
		return
	}
	fc.SwitchUser(u)
}

func cmdLs(fc *vfs.FsContext, args []string) {
	var names []string
	var verr *vfs.VFSError
	if len(args) == 0 {
		names = vfs.Ls(fc)
	} else {
		names, verr = vfs.LsPath(fc, args[0])
	}
	if verr != nil {
		fmt.Fprintf(os.Stderr, "ls: %v\n", verr)
		return
	}
	fmt.Println(strings.Join(names, "  "))
}

func cmdTree(fc *vfs.FsContext, args []string) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	lines, verr := vfs.Tree(fc, path)
	if verr != nil {
		fmt.Fprintf(os.Stderr, "tree: %v\n", verr)
		return
	}
	for _, l := range lines {
		fmt.Println(l)
	}
}

func cmdCd(fc *vfs.FsContext, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: cd <path>")
		return
	}
	if verr := vfs.Cd(fc, args[0]); verr != nil {
		fmt.Fprintf(os.Stderr, "cd: %v\n", verr)
	}
}

func cmdMkdir(fc *vfs.FsContext, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: mkdir <path>")
		return
	}
	if verr := vfs.Mkdir(fc, args[0]); verr != nil {
		fmt.Fprintf(os.Stderr, "mkdir: %v\n", verr)
	}
}

func cmdRmdir(fc *vfs.FsContext, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: rmdir <path>")
		return
	}
	if verr := vfs.Rmdir(fc, args[0]); verr != nil {
		fmt.Fprintf(os.Stderr, "rmdir: %v\n", verr)
	}
}

func cmdTouch(fc *vfs.FsContext, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: touch <path>")
		return
	}
	if verr := vfs.CreateFile(fc, args[0]); verr != nil {
		fmt.Fprintf(os.Stderr, "touch: %v\n", verr)
	}
}

func cmdStat(fc *vfs.FsContext, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: stat <path>")
		return
	}
	out, verr := vfs.Stat(fc, args[0])
	if verr != nil {
		fmt.Fprintf(os.Stderr, "stat: %v\n", verr)
		return
	}
	fmt.Print(out)
}

func cmdCp(fc *vfs.FsContext, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: cp <src> <dst>")
		return
	}
	if verr := vfs.Cp(fc, args[0], args[1]); verr != nil {
		fmt.Fprintf(os.Stderr, "cp: %v\n", verr)
	}
}

func cmdWrite(fc *vfs.FsContext, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: write <path> <text...>")
		return
	}
	text := strings.Join(args[1:], " ")
	if verr := vfs.WriteAll(fc, args[0], []byte(text)); verr != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", verr)
	}
}

func cmdCat(fc *vfs.FsContext, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: cat <path>")
		return
	}
	if verr := vfs.Cat(fc, args[0], os.Stdout); verr != nil {
		fmt.Fprintf(os.Stderr, "cat: %v\n", verr)
		return
	}
	fmt.Println()
}

func cmdRm(fc *vfs.FsContext, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: rm <path>")
		return
	}
	if verr := vfs.Rm(fc, args[0]); verr != nil {
		fmt.Fprintf(os.Stderr, "rm: %v\n", verr)
	}
}

func cmdChmod(fc *vfs.FsContext, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: chmod <octal> <path>")
		return
	}
	mode, err := strconv.ParseUint(args[0], 8, 32)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chmod: bad mode %q\n", args[0])
		return
	}
	if verr := vfs.Chmod(fc, args[1], uint32(mode)); verr != nil {
		fmt.Fprintf(os.Stderr, "chmod: %v\n", verr)
	}
}

func cmdImport(fc *vfs.FsContext, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: import <host> <vpath>")
		return
	}
	if verr := vfs.Import(fc, args[0], args[1]); verr != nil {
		fmt.Fprintf(os.Stderr, "import: %v\n", verr)
	}
}

func cmdExport(fc *vfs.FsContext, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: export <vpath> <host>")
		return
	}
	if verr := vfs.Export(fc, args[0], args[1]); verr != nil {
		fmt.Fprintf(os.Stderr, "export: %v\n", verr)
	}
}
