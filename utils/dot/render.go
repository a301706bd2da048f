package dot

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/goccy/go-graphviz"
)

func outputBase(outfname string) string {
	if outfname == "" {
		return filepath.Join(os.TempDir(), "immut_deps.")
	}
	return outfname + "."
}

// DotToImage renders a dot graph with the embedded graphviz library and
// returns the path of the image. If the library rejects the graph, the
// 'dot' executable is tried instead.
func DotToImage(outfname string, format string, dot []byte) (string, error) {
	img, err := renderLib(outputBase(outfname)+format, format, dot)
	if err != nil {
		log.Printf("graphviz rendering failed (%v), falling back to dot executable", err)
		return renderExec(outputBase(outfname), format, dot)
	}
	return img, nil
}

func renderLib(img string, format string, dot []byte) (string, error) {
	g := graphviz.New()
	defer g.Close()

	graph, err := graphviz.ParseBytes(dot)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := graph.Close(); err != nil {
			log.Println(err)
		}
	}()

	if err := g.RenderFilename(graph, graphviz.Format(format), img); err != nil {
		return "", err
	}
	return img, nil
}

func renderExec(basepath string, format string, dot []byte) (string, error) {
	dotExe, err := exec.LookPath("dot")
	if err != nil {
		return "", fmt.Errorf("unable to find program 'dot', please install it or check your PATH: %w", err)
	}

	dotpath := basepath + "dot"
	if err := os.WriteFile(dotpath, dot, 0644); err != nil {
		return "", err
	}
	log.Printf("Exported dot graph to %s\n", dotpath)

	img := basepath + format
	cmd := exec.Command(dotExe, "-T"+format, "-o", img)
	cmd.Stdin = bytes.NewReader(dot)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("command '%v': %v\n%v", cmd, err, stderr.String())
	}
	return img, nil
}

// ShowDot opens the graph in xdot and blocks until the viewer exits.
func (g *DotGraph) ShowDot() {
	xdot, err := exec.LookPath("xdot")
	if err != nil {
		log.Fatalln("unable to find program 'xdot', please install it or check your PATH")
	}

	f, err := os.CreateTemp("", "immut.*.dot")
	if err != nil {
		log.Fatalln(err)
	}
	defer os.Remove(f.Name())

	if err := g.WriteDot(f); err != nil {
		f.Close()
		log.Fatalln(err)
	} else if err := f.Close(); err != nil {
		log.Fatalln(err)
	}

	strict := 0
	for _, e := range g.Edges {
		if strings.Contains(e.Attrs["style"], "dashed") {
			strict++
		}
	}
	log.Printf("Graph has %d nodes and %d edges (%d strict).\n", g.countNodes(), len(g.Edges), strict)
	log.Println("Starting xdot on", f.Name())

	if err := exec.Command(xdot, f.Name()).Run(); err != nil {
		log.Printf("Command finished with error: %v", err)
	}
}
