package csvio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeZones(tb testing.TB, rows int) string {
	tb.Helper()
	var sb strings.Builder
	sb.WriteString("LocationID,Borough,Zone,service_zone\n")
	for i := 1; i <= rows; i++ {
		fmt.Fprintf(&sb, "%d,Queens,Zone %d,Boro Zone\n", i, i)
	}
	p := filepath.Join(tb.TempDir(), "zones.csv")
	if err := os.WriteFile(p, []byte(sb.String()), 0o644); err != nil {
		tb.Fatal(err)
	}
	return p
}

func BenchmarkReadZones(b *testing.B) {
	p := writeZones(b, 5000)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		fr, err := ReadFile(p)
		if err != nil {
			b.Fatal(err)
		}
		if fr.Rows() == 0 {
			b.Fatal("no rows")
		}
	}
}
