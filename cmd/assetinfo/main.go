// assetinfo is a CLI utility for inspecting exported mesh and skeleton
// binaries.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"

	"github.com/Faultbox/gameasset/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "mesh":
		cmdMesh(args)
	case "skeleton", "skel":
		cmdSkeleton(args)
	case "dump":
		cmdDump(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`assetinfo - exported asset inspection utility

Usage:
  assetinfo <command> [options]

Commands:
  mesh <file.mesh>         Show mesh header and buffer statistics
  skeleton <file.skel>     Show joint hierarchy and animation clips
  dump <file>              Dump the full decoded structure (either format)

Options:
  -dump    Dump the full decoded structure

Examples:
  assetinfo mesh character.mesh
  assetinfo skeleton -dump character.skel
  assetinfo dump character.mesh`)
}

func cmdMesh(args []string) {
	fs := flag.NewFlagSet("mesh", flag.ExitOnError)
	dump := fs.Bool("dump", false, "Dump the full decoded structure")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: assetinfo mesh [-dump] <file.mesh>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	mesh, err := formats.ParseMeshFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Mesh:           %s\n", path)
	fmt.Printf("Faces:          %d\n", len(mesh.Faces))
	fmt.Printf("Vertices:       %d\n", len(mesh.Vertices))
	fmt.Printf("UVs:            %v\n", mesh.HasUVs)
	fmt.Printf("Normals:        %v\n", mesh.HasNormals)
	fmt.Printf("Joint bindings: %v\n", mesh.HasJointBindings)

	if *dump {
		fmt.Println()
		spew.Dump(mesh)
	}
}

func cmdSkeleton(args []string) {
	fs := flag.NewFlagSet("skeleton", flag.ExitOnError)
	dump := fs.Bool("dump", false, "Dump the full decoded structure")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: assetinfo skeleton [-dump] <file.skel>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	skel, err := formats.ParseSkeletonFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Skeleton:   %s\n", path)
	fmt.Printf("Joints:     %d\n", len(skel.Joints))
	fmt.Printf("Animations: %d\n", len(skel.Animations))
	fmt.Println()

	fmt.Println("Joint hierarchy:")
	for i, j := range skel.Joints {
		if j.ParentIndex == formats.NoParent {
			fmt.Printf("  [%d] root\n", i)
		} else {
			fmt.Printf("  [%d] parent=%d\n", i, j.ParentIndex)
		}
	}

	if len(skel.Animations) > 0 {
		fmt.Println()
		fmt.Println("Animations:")
		for _, a := range skel.Animations {
			fmt.Printf("  %-24s %d frames\n", a.Name, len(a.Frames))
		}
	}

	if *dump {
		fmt.Println()
		spew.Dump(skel)
	}
}

// cmdDump decodes a file as either format and dumps it. The binaries
// carry no magic, so both parsers are simply tried in order.
func cmdDump(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: assetinfo dump <file>")
		os.Exit(1)
	}
	path := args[0]

	if mesh, err := formats.ParseMeshFile(path); err == nil {
		spew.Dump(mesh)
		return
	}
	if skel, err := formats.ParseSkeletonFile(path); err == nil {
		spew.Dump(skel)
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s decodes as neither a mesh nor a skeleton\n", path)
	os.Exit(1)
}
