package recast

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var ErrZeroVertexIndex = errors.New("obj: vertex index 0")

type ObjImporter struct {
	vertexPositions []float32
	meshFaces       []int
}

// LoadObjFile reads the vertices and faces of a Wavefront OBJ file. Polygonal faces are fanned into triangles.
func LoadObjFile(path string) (*InputGeom, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	geom, err := (&ObjImporter{}).Load(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return geom, nil
}

func (this *ObjImporter) Load(r io.Reader) (*InputGeom, error) {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := this.readLine(strings.TrimSpace(scanner.Text())); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewInputGeom(this.vertexPositions, this.meshFaces), nil
}

func (this *ObjImporter) readLine(line string) error {
	if len(line) < 2 {
		return nil
	}
	if line[0] == 'v' && (line[1] == ' ' || line[1] == '\t') {
		return this.readVector(line)
	} else if line[0] == 'f' && (line[1] == ' ' || line[1] == '\t') {
		return this.readFace(line)
	}
	return nil
}
func (this *ObjImporter) readVector(line string) error {
	v := strings.Fields(line)
	if len(v) < 4 {
		return fmt.Errorf("invalid vector, expected 3 coordinates, found %d", len(v)-1)
	}
	for i := 1; i <= 3; i++ {
		f, err := strconv.ParseFloat(v[i], 32)
		if err != nil {
			return err
		}
		this.vertexPositions = append(this.vertexPositions, float32(f))
	}
	return nil
}

func (this *ObjImporter) readFace(line string) error {
	v := strings.Fields(line)
	if len(v) < 4 {
		return fmt.Errorf("invalid number of face vertices: 3 coordinates expected, found %d", len(v)-1)
	}
	idx := make([]int, len(v)-1)
	for i := range idx {
		var err error
		if idx[i], err = this.readFaceVertex(v[i+1]); err != nil {
			return err
		}
	}
	for j := 1; j+1 < len(idx); j++ {
		this.meshFaces = append(this.meshFaces, idx[0], idx[j], idx[j+1])
	}
	return nil
}

func (this *ObjImporter) readFaceVertex(face string) (int, error) {
	v := strings.Split(face, "/")
	i, err := strconv.ParseInt(v[0], 10, 32)
	if err != nil {
		return 0, err
	}
	return this.getIndex(int(i), len(this.vertexPositions)/3)
}

func (this *ObjImporter) getIndex(posi, size int) (int, error) {
	if posi > 0 {
		posi--
	} else if posi < 0 {
		posi = size + posi
	} else {
		return 0, ErrZeroVertexIndex
	}
	return posi, nil
}
