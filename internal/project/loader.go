package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leapstack-labs/leapbi/pkg/model"
	"github.com/leapstack-labs/leapbi/pkg/tmdl"
)

// Sentinel errors for the loader.
var (
	ErrNoManifest       = errors.New("project: no .pbip file found")
	ErrNoSemanticModel  = errors.New("project: no semantic model found")
	ErrTableFileMissing = errors.New("project: table file not found")
)

// Loader reads PBIP projects from the filesystem. Malformed auxiliary
// files (tables, cultures, sidecars) are logged and skipped rather
// than failing the whole load.
type Loader struct {
	log *slog.Logger
}

// NewLoader returns a Loader logging through log.
func NewLoader(log *slog.Logger) *Loader {
	if log == nil {
		log = slog.Default()
	}
	return &Loader{log: log}
}

// Load reads the project at path, which may be the .pbip manifest
// itself or the directory holding it.
func (l *Loader) Load(path string) (*Structure, error) {
	manifest, dir, err := findManifest(path)
	if err != nil {
		return nil, err
	}

	info, err := readManifest(manifest)
	if err != nil {
		return nil, err
	}

	structure := &Structure{Info: *info}

	stem := strings.TrimSuffix(filepath.Base(manifest), filepath.Ext(manifest))
	modelDir := findSemanticModelDir(dir, stem)
	if modelDir != "" {
		sm, err := l.loadSemanticModel(modelDir)
		if err != nil {
			return nil, err
		}
		structure.SemanticModel = sm
		structure.EditorSettings = readJSONSidecar(l.log, filepath.Join(modelDir, ".pbi", "editorSettings.json"))
		structure.DiagramLayout = readJSONSidecar(l.log, filepath.Join(modelDir, "diagramLayout.json"))
	}

	structure.PlatformConfigs = l.loadPlatformConfigs(dir)

	return structure, nil
}

// List walks dir recursively and summarizes every .pbip project found,
// plus standalone .SemanticModel directories not owned by a project.
func (l *Loader) List(dir string) ([]Summary, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("project: directory does not exist: %s", dir)
	}

	var projects []Summary
	owned := map[string]bool{}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".pbip" {
			return err
		}

		info, err := readManifest(path)
		if err != nil {
			l.log.Warn("skipping unreadable project manifest", "path", path, "error", err)
			return nil
		}

		parent := filepath.Dir(path)
		stem := strings.TrimSuffix(filepath.Base(path), ".pbip")
		summary := Summary{
			Name:      stem,
			Path:      path,
			Directory: parent,
			Type:      KindProject,
			Version:   info.Version,
		}
		for _, artifact := range info.Artifacts {
			if artifact.Report != nil {
				summary.HasReport = true
			}
		}
		if findSemanticModelDir(parent, stem) != "" {
			summary.HasSemanticModel = true
		}

		owned[parent] = true
		projects = append(projects, summary)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() || !strings.HasSuffix(d.Name(), ".SemanticModel") {
			return err
		}
		if owned[filepath.Dir(path)] {
			return fs.SkipDir
		}

		projects = append(projects, Summary{
			Name:             strings.TrimSuffix(d.Name(), ".SemanticModel"),
			Path:             path,
			Directory:        filepath.Dir(path),
			Type:             KindStandaloneModel,
			HasSemanticModel: true,
		})
		return fs.SkipDir
	})
	if err != nil {
		return nil, err
	}

	return projects, nil
}

// SemanticModelDir locates the semantic model directory of the project
// at path.
func SemanticModelDir(path string) (string, error) {
	dir := path
	if fi, err := os.Stat(path); err == nil && !fi.IsDir() && filepath.Ext(path) == ".pbip" {
		dir = filepath.Dir(path)
	}

	for _, pattern := range []string{"*.SemanticModel", "*.Dataset"} {
		matches, _ := filepath.Glob(filepath.Join(dir, pattern))
		sort.Strings(matches)
		for _, m := range matches {
			if fi, err := os.Stat(m); err == nil && fi.IsDir() {
				return m, nil
			}
		}
	}

	return "", ErrNoSemanticModel
}

// TableFilePath returns the path of a table's TMDL file inside the
// project at projectPath.
func TableFilePath(projectPath, tableName string) (string, error) {
	modelDir, err := SemanticModelDir(projectPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(modelDir, "definition", "tables", tableName+".tmdl"), nil
}

// ReadTable returns the raw TMDL text of one table file.
func ReadTable(projectPath, tableName string) (string, error) {
	path, err := TableFilePath(projectPath, tableName)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrTableFileMissing, path)
		}
		return "", err
	}
	return string(data), nil
}

// WriteTable replaces the TMDL text of one table file.
func WriteTable(projectPath, tableName, content string) error {
	path, err := TableFilePath(projectPath, tableName)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func findManifest(path string) (manifest, dir string, err error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", "", fmt.Errorf("project: path does not exist: %s", path)
	}

	if !fi.IsDir() && filepath.Ext(path) == ".pbip" {
		return path, filepath.Dir(path), nil
	}

	matches, _ := filepath.Glob(filepath.Join(path, "*.pbip"))
	if len(matches) == 0 {
		return "", "", fmt.Errorf("%w in %s", ErrNoManifest, path)
	}
	sort.Strings(matches)
	return matches[0], path, nil
}

func readManifest(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("project: reading manifest %s: %w", path, err)
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("project: decoding manifest %s: %w", path, err)
	}
	return &info, nil
}

func findSemanticModelDir(dir, stem string) string {
	candidates := []string{
		filepath.Join(dir, stem+".SemanticModel"),
		filepath.Join(dir, stem+".Dataset"),
		filepath.Join(dir, "SemanticModel"),
		filepath.Join(dir, "Dataset"),
	}
	for _, c := range candidates {
		if fi, err := os.Stat(c); err == nil && fi.IsDir() {
			return c
		}
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "*.SemanticModel"))
	sort.Strings(matches)
	if len(matches) > 0 {
		return matches[0]
	}
	return ""
}

func (l *Loader) loadPlatformConfigs(dir string) map[string]Platform {
	configs := map[string]Platform{}

	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || d.Name() != ".platform" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			l.log.Warn("skipping unreadable platform config", "path", path, "error", err)
			return nil
		}
		var platform Platform
		if err := json.Unmarshal(data, &platform); err != nil {
			l.log.Warn("skipping malformed platform config", "path", path, "error", err)
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		configs[filepath.Dir(rel)] = platform
		return nil
	})

	return configs
}

func readJSONSidecar(log *slog.Logger, path string) map[string]any {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warn("skipping malformed sidecar", "path", path, "error", err)
		return nil
	}
	return doc
}

// loadSemanticModel assembles the model from the definition directory:
// model.tmdl first, then tables (referenced ones in declaration order,
// stragglers after), relationships, cultures and database.
func (l *Loader) loadSemanticModel(modelDir string) (*model.SemanticModel, error) {
	definitionDir := filepath.Join(modelDir, "definition")

	data, err := os.ReadFile(filepath.Join(definitionDir, "model.tmdl"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	doc, err := tmdl.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("project: parsing model.tmdl: %w", err)
	}

	sm := &model.SemanticModel{Name: "Model", Culture: "en-US"}

	// Table refs appear either inside the model block or at top level,
	// depending on which tool wrote the file.
	var refs []string
	if header := doc.Model; header != nil {
		if header.Name != "" {
			sm.Name = header.Name
		}
		if header.Culture != "" {
			sm.Culture = header.Culture
		}
		sm.DefaultPowerBIDataSourceVersion = header.DefaultPowerBIDataSourceVersion
		sm.SourceQueryCulture = header.SourceQueryCulture
		sm.DiscourageImplicitMeasures = header.DiscourageImplicitMeasures
		sm.DataAccessOptions = header.DataAccessOptions
		sm.Annotations = append(sm.Annotations, header.Annotations...)
		refs = append(refs, header.TableRefs...)
	}
	refs = append(refs, doc.TableRefs...)
	l.loadTables(sm, filepath.Join(definitionDir, "tables"), refs)

	l.loadRelationships(sm, filepath.Join(definitionDir, "relationships.tmdl"))
	l.loadCultures(sm, filepath.Join(definitionDir, "cultures"))
	l.loadDatabase(sm, filepath.Join(definitionDir, "database.tmdl"))

	return sm, nil
}

func (l *Loader) loadTables(sm *model.SemanticModel, tablesDir string, refs []string) {
	if _, err := os.Stat(tablesDir); err != nil {
		return
	}

	loaded := map[string]bool{}

	for _, ref := range refs {
		ref = model.Unquote(ref)
		path := filepath.Join(tablesDir, ref+".tmdl")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if table := l.loadTable(path); table != nil {
			sm.Tables = append(sm.Tables, *table)
			loaded[ref] = true
		}
	}

	matches, _ := filepath.Glob(filepath.Join(tablesDir, "*.tmdl"))
	sort.Strings(matches)
	for _, path := range matches {
		name := strings.TrimSuffix(filepath.Base(path), ".tmdl")
		if loaded[name] {
			continue
		}
		if table := l.loadTable(path); table != nil {
			sm.Tables = append(sm.Tables, *table)
		}
	}
}

func (l *Loader) loadTable(path string) *model.Table {
	data, err := os.ReadFile(path)
	if err != nil {
		l.log.Warn("skipping unreadable table file", "path", path, "error", err)
		return nil
	}
	doc, err := tmdl.Parse(string(data))
	if err != nil {
		l.log.Warn("skipping malformed table file", "path", path, "error", err)
		return nil
	}
	if len(doc.Tables) == 0 {
		return nil
	}
	// One table per file by convention.
	return &doc.Tables[0]
}

func (l *Loader) loadRelationships(sm *model.SemanticModel, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	doc, err := tmdl.Parse(string(data))
	if err != nil {
		l.log.Warn("skipping malformed relationships file", "path", path, "error", err)
		return
	}
	sm.Relationships = append(sm.Relationships, doc.Relationships...)
}

func (l *Loader) loadCultures(sm *model.SemanticModel, culturesDir string) {
	matches, _ := filepath.Glob(filepath.Join(culturesDir, "*.tmdl"))
	sort.Strings(matches)
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			l.log.Warn("skipping unreadable culture file", "path", path, "error", err)
			continue
		}
		doc, err := tmdl.Parse(string(data))
		if err != nil {
			l.log.Warn("skipping malformed culture file", "path", path, "error", err)
			continue
		}
		if len(doc.CultureInfos) > 0 {
			sm.CultureInfos = append(sm.CultureInfos, doc.CultureInfos[0])
		}
	}
}

func (l *Loader) loadDatabase(sm *model.SemanticModel, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	doc, err := tmdl.Parse(string(data))
	if err != nil {
		l.log.Warn("skipping malformed database file", "path", path, "error", err)
		return
	}
	if doc.Database != nil {
		sm.CompatibilityLevel = doc.Database.CompatibilityLevel
	}
}
