package detect

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// LoadLabels reads the class label table bundled with the model: one class
// name per line, blank lines ignored.
func LoadLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "detect: open names file")
	}
	defer f.Close() //nolint:errcheck

	var labels []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}
		labels = append(labels, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "detect: read names file")
	}
	if len(labels) == 0 {
		return nil, eris.Errorf("detect: names file %s is empty", path)
	}
	return labels, nil
}

// className maps a class index to its label, falling back to a synthetic name
// for indices outside the table.
func className(labels []string, idx int) string {
	if idx >= 0 && idx < len(labels) {
		return labels[idx]
	}
	return fmt.Sprintf("class_%d", idx)
}
