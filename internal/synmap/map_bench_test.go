package synmap

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Aman-CERP/synmap/internal/synonym"
)

// generateRules returns n lines of two groups each, half of them multi-word.
func generateRules(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "t%d, term%d|abbr%d, long form %d\n", i, i, i, i)
	}
	return b.String()
}

func BenchmarkCompile(b *testing.B) {
	for _, n := range []int{100, 10000} {
		for _, expand := range []bool{false, true} {
			b.Run(fmt.Sprintf("rules=%d/expand=%t", n, expand), func(b *testing.B) {
				rules := generateRules(n)
				normalizer := whitespaceNormalizer(b)
				opts := synonym.Options{Expand: expand, Dedup: true}

				b.ReportAllocs()
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					if _, err := Compile(strings.NewReader(rules), opts, normalizer); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkFilter(b *testing.B) {
	m, err := Compile(strings.NewReader(generateRules(10000)), synonym.Options{Expand: true, Dedup: true}, whitespaceNormalizer(b))
	if err != nil {
		b.Fatal(err)
	}
	analyzer := analyzerWith(b, NewFilter(m))

	text := []byte(strings.Repeat("abbr42 near term7 and plain words in long form 9 ", 20))

	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = analyzer.Analyze(text)
	}
}
