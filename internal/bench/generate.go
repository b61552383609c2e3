package bench

import (
	"fmt"
	"strings"
)

// GenerateGo returns a syntactically plausible Go source of about n lines.
func GenerateGo(n int) string {
	var b strings.Builder
	b.WriteString("package synthetic\n\n")
	written := 2

	for fn := 0; written < n; fn++ {
		body := []string{
			fmt.Sprintf("// fn%d computes a value.", fn),
			fmt.Sprintf("func fn%d(x int) (int, error) {", fn),
			"\t/* scale the input */",
			fmt.Sprintf("\ty := x * %d", fn+1),
			"\tif y > 0x7f {",
			fmt.Sprintf("\t\treturn 0, fmt.Errorf(\"fn%d: overflow %%d\", y)", fn),
			"\t}",
			"\treturn y, nil",
			"}",
			"",
		}
		for _, l := range body {
			if written >= n {
				break
			}
			b.WriteString(l)
			b.WriteByte('\n')
			written++
		}
	}

	return b.String()
}
