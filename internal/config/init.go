package config

import (
	"fmt"
	"os"
)

const starterConfig = `# bookbuilder project configuration
title: "My Book"

# output_dir: build

formats:
  - html

# External render commands. {input} is the assembled Markdown, {output} the
# artifact path, {title} the book title.
# renderers:
#   pdf: ["pandoc", "{input}", "-o", "{output}", "--metadata", "title={title}"]
#   epub: ["pandoc", "{input}", "-o", "{output}", "--metadata", "title={title}"]

# locales:
#   - de
#   - fr

# watch:
#   debounce: 500ms
#   rebuild_every: 1h

# metrics:
#   enabled: true
#   addr: ":9920"

# events:
#   nats_url: nats://localhost:4222
`

// WriteStarter creates a commented starter configuration. It refuses to
// overwrite an existing file.
func WriteStarter(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	return os.WriteFile(path, []byte(starterConfig), 0o644)
}
