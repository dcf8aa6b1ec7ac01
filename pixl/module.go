package pixl

import (
	"fmt"
	"os"
	"path/filepath"
)

func goModTemplate(module string) string {
	return fmt.Sprintf(`module %s

go 1.23.3
`, module)
}

// WriteGoModule writes the simplified program into dir as a Go module with
// a single package called pkgName, which exports Run and Memory.
func (p *Program) WriteGoModule(dir, pkgName string) error {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	src, err := goSource(p.Simplified, pkgName)
	if err != nil {
		return err
	}
	goModFilePath := filepath.Join(dir, "go.mod")
	if err := os.WriteFile(goModFilePath, []byte(goModTemplate(pkgName)), 0o644); err != nil {
		return fmt.Errorf("write go.mod: %w", err)
	}
	filePath := filepath.Join(dir, pkgName+".go")
	if err := os.WriteFile(filePath, []byte(src), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filePath, err)
	}
	packageLogger.Debug("wrote module", "dir", dir, "package", pkgName)
	return nil
}
