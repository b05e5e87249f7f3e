package manifest

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-git/go-billy/v5"
	"github.com/valyala/fastjson"

	"github.com/fulmenhq/ncbisort/pkg/logger"
)

// ReportPath is the manifest location relative to the download root.
const ReportPath = "data/assembly_data_report.jsonl"

// MaxLineSize bounds a single manifest record.
const MaxLineSize = 64 << 20

// ErrMalformed marks manifest content that cannot be loaded.
var ErrMalformed = errors.New("malformed manifest")

// Load reads and flattens the manifest at path on fsys.
func Load(fsys billy.Filesystem, path string) (*Table, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	raw, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	logger.Debug("Manifest parsed",
		logger.String("path", path),
		logger.Int("rows", raw.Len()),
		logger.Int("columns", len(raw.columns)))

	flat, err := Flatten(raw)
	if err != nil {
		return nil, fmt.Errorf("flatten manifest %s: %w", path, err)
	}
	logger.Debug("Manifest flattened",
		logger.Int("nested", len(raw.NestedColumns())),
		logger.Int("columns", len(flat.columns)))
	return flat, nil
}

// Parse reads one JSON object per line. Blank lines are skipped; any other
// line that is not a JSON object fails the whole parse.
func Parse(r io.Reader) (*Table, error) {
	return parse(r, MaxLineSize)
}

func parse(r io.Reader, maxLine int) (*Table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, min(64*1024, maxLine)), maxLine)

	var p fastjson.Parser
	t := &Table{}
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		v, err := p.ParseBytes(b)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
		}
		if v.Type() != fastjson.TypeObject {
			return nil, fmt.Errorf("%w: line %d: expected object, got %s", ErrMalformed, line, v.Type())
		}
		rec, err := decodeObject(v)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line, err)
		}
		t.append(rec)
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("%w: line %d: longer than %d bytes", ErrMalformed, line+1, maxLine)
		}
		return nil, fmt.Errorf("read line %d: %w", line+1, err)
	}
	return t, nil
}

func decodeObject(v *fastjson.Value) (*Record, error) {
	o, err := v.Object()
	if err != nil {
		return nil, err
	}
	rec := NewRecord()
	var visitErr error
	o.Visit(func(key []byte, child *fastjson.Value) {
		if visitErr != nil {
			return
		}
		val, err := decodeValue(child)
		if err != nil {
			visitErr = err
			return
		}
		rec.Set(string(key), val)
	})
	if visitErr != nil {
		return nil, visitErr
	}
	return rec, nil
}

func decodeValue(v *fastjson.Value) (Value, error) {
	switch v.Type() {
	case fastjson.TypeNull:
		return Null(), nil
	case fastjson.TypeTrue:
		return BoolValue(true), nil
	case fastjson.TypeFalse:
		return BoolValue(false), nil
	case fastjson.TypeNumber:
		return NumberValue(v.String()), nil
	case fastjson.TypeString:
		b, err := v.StringBytes()
		if err != nil {
			return Value{}, err
		}
		return StringValue(string(b)), nil
	case fastjson.TypeArray:
		return BlobValue(v.String()), nil
	case fastjson.TypeObject:
		rec, err := decodeObject(v)
		if err != nil {
			return Value{}, err
		}
		return ObjectValue(rec, v.String()), nil
	default:
		return Value{}, fmt.Errorf("unsupported JSON type %s", v.Type())
	}
}
