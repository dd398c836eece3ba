package dataset

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
)

const salesCSV = `region,product,units,price,date,active
North,Widget,10,2.5,2024-01-01,True
South,Gadget,4,10,2024-01-02,False
North,Gadget,,7.25,2024-01-03,True
East,Widget,8,3,2024-01-04,
`

func mustLoad(t *testing.T, csv string) *Dataset {
	t.Helper()
	ds, err := Load(context.Background(), "test.csv", []byte(csv), LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return ds
}

func TestLoad_InfersKinds(t *testing.T) {
	ds := mustLoad(t, salesCSV)

	if ds.Rows() != 4 {
		t.Fatalf("Rows() = %d, want 4", ds.Rows())
	}
	if ds.Encoding() != EncodingUTF8 {
		t.Errorf("Encoding() = %s, want utf-8", ds.Encoding())
	}

	want := map[string]Kind{
		"region":  KindCategorical,
		"product": KindCategorical,
		"units":   KindNumeric,
		"price":   KindNumeric,
		"date":    KindDatetime,
		"active":  KindBoolean,
	}
	for name, kind := range want {
		col, ok := ds.Column(name)
		if !ok {
			t.Errorf("column %q missing", name)
			continue
		}
		if col.Kind != kind {
			t.Errorf("column %q kind = %s, want %s", name, col.Kind, kind)
		}
	}

	if got := ds.NumericColumns(); !reflect.DeepEqual(got, []string{"units", "price"}) {
		t.Errorf("NumericColumns() = %v", got)
	}
	if got := ds.CategoricalColumns(); !reflect.DeepEqual(got, []string{"region", "product"}) {
		t.Errorf("CategoricalColumns() = %v", got)
	}
}

func TestLoad_MissingValues(t *testing.T) {
	ds := mustLoad(t, salesCSV)

	units, err := ds.Float64s("units")
	if err != nil {
		t.Fatalf("Float64s() error = %v", err)
	}
	if !math.IsNaN(units[2]) {
		t.Errorf("units[2] = %v, want NaN", units[2])
	}

	col, _ := ds.Column("units")
	if col.Missing != 1 {
		t.Errorf("units missing = %d, want 1", col.Missing)
	}
	if !col.Integral {
		t.Error("units should be integral")
	}

	active, err := ds.Strings("active")
	if err != nil {
		t.Fatalf("Strings() error = %v", err)
	}
	if active[3] != nil {
		t.Errorf("active[3] = %q, want nil", *active[3])
	}
}

func TestLoad_Latin1Fallback(t *testing.T) {
	// "café" with é encoded as the single byte 0xE9.
	data := []byte("name,score\ncaf\xe9,1\n")

	ds, err := Load(context.Background(), "latin.csv", data, LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ds.Encoding() != EncodingLatin1 {
		t.Errorf("Encoding() = %s, want latin-1", ds.Encoding())
	}
	names, _ := ds.Strings("name")
	if *names[0] != "café" {
		t.Errorf("name = %q, want %q", *names[0], "café")
	}
}

func TestLoad_StripsBOM(t *testing.T) {
	ds := mustLoad(t, "\ufeffid,value\n1,2\n")
	if _, ok := ds.Column("id"); !ok {
		t.Errorf("header = %v, want first column %q", ds.Header(), "id")
	}
}

func TestLoad_DuplicateAndBlankHeaders(t *testing.T) {
	ds := mustLoad(t, "a,a,,a.1,a\n1,2,3,4,5\n")

	want := []string{"a", "a.1", "Unnamed: 2", "a.1.1", "a.2"}
	got := ds.Header()
	// "a.1" is claimed by the second column, so the literal "a.1" header
	// is suffixed in turn.
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Header() = %v, want %v", got, want)
	}
}

func TestLoad_ShortRowsPadded(t *testing.T) {
	ds := mustLoad(t, "x,y,z\n1,2\n3,4,5\n")

	z, err := ds.Float64s("z")
	if err != nil {
		t.Fatalf("Float64s() error = %v", err)
	}
	if !math.IsNaN(z[0]) || z[1] != 5 {
		t.Errorf("z = %v, want [NaN 5]", z)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		opts    LoadOptions
		wantErr error
	}{
		{"empty", "", LoadOptions{}, ErrEmptyFile},
		{"whitespace only", "  \n\n", LoadOptions{}, ErrEmptyFile},
		{"long row", "a,b\n1,2,3\n", LoadOptions{}, ErrInvalidCSV},
		{"too many rows", "a\n1\n2\n3\n", LoadOptions{MaxRows: 2}, ErrTooManyRows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), "bad.csv", []byte(tt.data), tt.opts)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, "x.csv", []byte("a\n1\n"), LoadOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestLoad_HeaderOnly(t *testing.T) {
	ds := mustLoad(t, "a,b\n")
	if ds.Rows() != 0 {
		t.Errorf("Rows() = %d, want 0", ds.Rows())
	}
	if len(ds.Columns()) != 2 {
		t.Errorf("Columns() = %d, want 2", len(ds.Columns()))
	}
}

func TestLoad_HeaderOnlyIsCategorical(t *testing.T) {
	ds := mustLoad(t, "a,b\n")
	if got := ds.NumericColumns(); len(got) != 0 {
		t.Errorf("NumericColumns() = %v, want none", got)
	}
	if got := ds.CategoricalColumns(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("CategoricalColumns() = %v", got)
	}
}

func TestLoad_CategoricalWithMissing(t *testing.T) {
	ds := mustLoad(t, "city,n\nOslo,1\n,2\nBergen,3\nNA,4\n")

	cities, err := ds.Strings("city")
	if err != nil {
		t.Fatalf("Strings() error = %v", err)
	}
	if len(cities) != 4 {
		t.Fatalf("Strings() returned %d values, want 4", len(cities))
	}
	if cities[0] == nil || *cities[0] != "Oslo" || cities[2] == nil || *cities[2] != "Bergen" {
		t.Errorf("Strings() = %v", cities)
	}
	if cities[1] != nil || cities[3] != nil {
		t.Error("missing cells should be nil")
	}

	col, _ := ds.Column("city")
	if col.Missing != 2 {
		t.Errorf("city missing = %d, want 2", col.Missing)
	}
	nils, err := ds.Frame().Series[0].NilCount()
	if err != nil || nils != 2 {
		t.Errorf("series NilCount() = %d, %v, want 2", nils, err)
	}

	rows := ds.Head(4)
	if rows[0][0] != "Oslo" || rows[1][0] != "" || rows[2][0] != "Bergen" {
		t.Errorf("Head() = %v", rows)
	}

	// Strings hands out a copy.
	*cities[0] = "changed"
	if again, _ := ds.Strings("city"); *again[0] != "Oslo" {
		t.Errorf("dataset mutated through Strings(): %q", *again[0])
	}
}

func TestLabels(t *testing.T) {
	ds := mustLoad(t, salesCSV)

	dates, err := ds.Labels("date")
	if err != nil {
		t.Fatalf("Labels(date) error = %v", err)
	}
	if dates[0] == nil || *dates[0] != "2024-01-01" {
		t.Errorf("Labels(date)[0] = %v, want 2024-01-01", dates[0])
	}

	regions, err := ds.Labels("region")
	if err != nil || *regions[0] != "North" {
		t.Errorf("Labels(region) = %v, %v", regions, err)
	}

	if _, err := ds.Labels("units"); !errors.Is(err, ErrWrongKind) {
		t.Errorf("Labels(units) error = %v, want ErrWrongKind", err)
	}
}

func TestHead(t *testing.T) {
	ds := mustLoad(t, salesCSV)

	rows := ds.Head(2)
	if len(rows) != 2 {
		t.Fatalf("Head(2) returned %d rows", len(rows))
	}
	want := []string{"North", "Widget", "10", "2.5", "2024-01-01", "True"}
	if !reflect.DeepEqual(rows[0], want) {
		t.Errorf("Head(2)[0] = %v, want %v", rows[0], want)
	}

	if got := len(ds.Head(100)); got != 4 {
		t.Errorf("Head(100) returned %d rows, want 4", got)
	}

	third := ds.Head(3)[2]
	if third[2] != "" {
		t.Errorf("missing cell rendered as %q, want empty", third[2])
	}
}

func TestAccessors_WrongKind(t *testing.T) {
	ds := mustLoad(t, salesCSV)

	if _, err := ds.Float64s("region"); !errors.Is(err, ErrWrongKind) {
		t.Errorf("Float64s(region) error = %v, want ErrWrongKind", err)
	}
	if _, err := ds.Strings("nope"); !errors.Is(err, ErrColumnNotFound) {
		t.Errorf("Strings(nope) error = %v, want ErrColumnNotFound", err)
	}
	if _, err := ds.Times("date"); err != nil {
		t.Errorf("Times(date) error = %v", err)
	}
}

func TestDecode(t *testing.T) {
	out, enc, err := Decode([]byte("plain"))
	if err != nil || enc != EncodingUTF8 || string(out) != "plain" {
		t.Errorf("Decode(plain) = %q, %s, %v", out, enc, err)
	}

	out, enc, err = Decode([]byte{0x41, 0xff})
	if err != nil || enc != EncodingLatin1 {
		t.Fatalf("Decode(latin) = %s, %v", enc, err)
	}
	if !strings.HasSuffix(string(out), "ÿ") {
		t.Errorf("Decode(latin) = %q, want trailing ÿ", out)
	}
}
