package project

import (
	"errors"
	"path/filepath"

	"github.com/pymake-build/pymake/internal/pmerr"
	"github.com/pymake-build/pymake/internal/subst"
	"github.com/pymake-build/pymake/internal/toolchain"
	"github.com/pymake-build/pymake/internal/xmldoc"
)

// DumpFunc receives the resolved tree after each evaluation phase, for
// the `-x` CLI diagnostic (spec.md §6.1).
type DumpFunc func(phase string, root *xmldoc.Element)

// Option configures a single Resolve call.
type Option func(*resolveConfig)

type resolveConfig struct {
	dump DumpFunc
}

// WithPhaseDump registers a DumpFunc invoked after Phase P1 (inclusion
// complete) and after Phase P2 (substitution and guarding complete).
func WithPhaseDump(fn DumpFunc) Option {
	return func(c *resolveConfig) { c.dump = fn }
}

// Resolve runs the full configuration resolver (spec.md §4.1, phases
// P0–P4): it parses rootPath, inlines includes, applies substitution and
// `if` pruning, selects the toolchain/configuration pair, and assembles
// the normalized Project.
func Resolve(rootPath string, cliSubs map[string]string, cliDictFiles []string, activeConfigName string, opts ...Option) (*Project, error) {
	cfg := &resolveConfig{}
	for _, o := range opts {
		o(cfg)
	}
	// P0 — seed substitutions.
	sealed := make(map[string]string, len(cliSubs))
	for k, v := range cliSubs {
		sealed[k] = v
	}
	m := subst.New(sealed)
	for _, dictPath := range cliDictFiles {
		entries, err := LoadDictFile(dictPath)
		if err != nil {
			return nil, err
		}
		for k, v := range entries {
			m.TryAdd(k, v) // CLI -s entries, already sealed, take priority
		}
	}
	m.Seal("config", activeConfigName)

	// P1 — load and inline.
	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, pmerr.IO(rootPath, err)
	}
	doc, err := xmldoc.Load(absRoot)
	if err != nil {
		return nil, err
	}
	if doc.Root.Tag != "project" {
		return nil, pmerr.ConfigAt(doc.Root.Locator(), absRoot, "project root must be <project>, found <%s>", doc.Root.Tag)
	}
	chain := map[string]bool{absRoot: true}
	if err := expandIncludes(m, doc.Root, chain); err != nil {
		return nil, err
	}
	if cfg.dump != nil {
		cfg.dump("P1-include", doc.Root)
	}

	// P2 — substitute and guard.
	if err := substituteAndGuard(m, doc.Root); err != nil {
		return nil, err
	}
	if cfg.dump != nil {
		cfg.dump("P2-substitute", doc.Root)
	}

	root := doc.Root
	projectDir := filepath.Dir(absRoot)

	artifactName, ok := root.Attr("artifact")
	if !ok {
		return nil, pmerr.ConfigAt(root.Locator(), absRoot, "<project> missing required artifact attribute")
	}
	kindAttr, ok := root.Attr("type")
	if !ok {
		return nil, pmerr.ConfigAt(root.Locator(), absRoot, "<project> missing required type attribute")
	}
	var kind ArtifactKind
	switch kindAttr {
	case "executable":
		kind = Executable
	case "library":
		kind = Library
	default:
		return nil, pmerr.ConfigAt(root.Locator(), absRoot, "unknown project type %q, expected executable or library", kindAttr)
	}

	// P3 — select toolchain and configuration.
	cfgEl, ok := findNamed(root.ChildrenByTag("configuration"), activeConfigName)
	if !ok {
		return nil, pmerr.ConfigAt(root.Locator(), absRoot, "no <configuration name=%q> found", activeConfigName)
	}
	activeConfig, err := readConfiguration(cfgEl)
	if err != nil {
		return nil, err
	}

	tcEl, ok := findNamed(root.ChildrenByTag("toolchain"), activeConfig.ToolchainRef)
	if !ok {
		return nil, pmerr.ConfigAt(cfgEl.Locator(), absRoot, "configuration %q references unknown toolchain %q", activeConfig.Name, activeConfig.ToolchainRef)
	}
	tc, err := readToolchain(tcEl, absRoot)
	if err != nil {
		return nil, err
	}

	m.Seal("ccprefix", tc.CCPrefix())

	// P4 — assemble ResolvedProject.
	p := &Project{
		Dir:           projectDir,
		ArtifactName:  artifactName,
		ArtifactKind:  kind,
		OutputDir:     filepath.Join(projectDir, activeConfigName),
		Toolchain:     tc,
		Configuration: activeConfig,
	}

	if extEl, ok := root.FirstChildByTag("extension"); ok {
		p.ArtifactExt = extEl.Text
	}

	p.GlobalCcflags = append(textsOf(root.ChildrenByTag("ccflag")), tc.CCFlags...)
	p.GlobalCflags = append(textsOf(root.ChildrenByTag("cflag")), tc.CFlags...)
	p.GlobalCppflags = append(textsOf(root.ChildrenByTag("cppflag")), tc.CppFlags...)
	p.GlobalAflags = append(textsOf(root.ChildrenByTag("aflag")), tc.AFlags...)
	p.GlobalLflags = append(textsOf(root.ChildrenByTag("lflag")), tc.LFlags...)

	if incsEl, ok := root.FirstChildByTag("includes"); ok {
		for _, pathEl := range incsEl.ChildrenByTag("path") {
			p.Includes = append(p.Includes, pathEl.Text)
		}
	}

	if objsEl, ok := root.FirstChildByTag("objects"); ok {
		for _, objEl := range objsEl.ChildrenByTag("obj") {
			if path, ok := objEl.Attr("path"); ok {
				p.Objects = append(p.Objects, path)
			} else {
				p.Objects = append(p.Objects, objEl.Text)
			}
		}
	}

	for _, opEl := range root.ChildrenByTag("pre_op") {
		expanded, err := m.Expand(opEl.Text, opEl.Locator())
		if err != nil {
			return nil, err
		}
		p.PreOps = append(p.PreOps, Op{Command: expanded, Element: opEl.Locator()})
	}
	for _, opEl := range root.ChildrenByTag("post_op") {
		expanded, err := m.Expand(opEl.Text, opEl.Locator())
		if err != nil {
			return nil, err
		}
		p.PostOps = append(p.PostOps, Op{Command: expanded, Element: opEl.Locator()})
	}

	if pbsEl, ok := root.FirstChildByTag("prebuilds"); ok {
		for _, pbEl := range pbsEl.ChildrenByTag("project") {
			pb, err := readPrebuildRef(pbEl)
			if err != nil {
				return nil, err
			}
			p.Prebuilds = append(p.Prebuilds, pb)
		}
	}

	if srcsEl, ok := root.FirstChildByTag("sources"); ok {
		sources, err := assembleSources(projectDir, srcsEl)
		if err != nil {
			return nil, err
		}
		p.Sources = sources
	}

	if err := validateProject(p); err != nil {
		return nil, err
	}

	return p, nil
}

func findNamed(els []*xmldoc.Element, name string) (*xmldoc.Element, bool) {
	for _, e := range els {
		if n, ok := e.Attr("name"); ok && n == name {
			return e, true
		}
	}
	return nil, false
}

func textsOf(els []*xmldoc.Element) []string {
	if len(els) == 0 {
		return nil
	}
	out := make([]string, len(els))
	for i, e := range els {
		out[i] = e.Text
	}
	return out
}

func readToolchain(el *xmldoc.Element, path string) (Toolchain, error) {
	t := Toolchain{}
	t.Name, _ = el.Attr("name")
	if presetName, ok := el.Attr("preset"); ok {
		preset, err := toolchain.MustLookup(presetName)
		if err != nil {
			var pe *pmerr.Error
			errors.As(err, &pe)
			return Toolchain{}, pmerr.ConfigAt(el.Locator(), path, "%s", pe.Message)
		}
		t.CompilerPath = preset.CompilerPath
		t.CompilerPrefix = preset.CompilerPrefix
	}
	if e, ok := el.FirstChildByTag("compilerPath"); ok {
		t.CompilerPath = e.Text
	}
	if e, ok := el.FirstChildByTag("compilerPrefix"); ok {
		t.CompilerPrefix = e.Text
	}
	t.CCFlags = textsOf(el.ChildrenByTag("ccflag"))
	t.AFlags = textsOf(el.ChildrenByTag("aflag"))
	t.CFlags = textsOf(el.ChildrenByTag("cflag"))
	t.CppFlags = textsOf(el.ChildrenByTag("cppflag"))
	t.LFlags = textsOf(el.ChildrenByTag("lflag"))
	return t, nil
}

func readConfiguration(el *xmldoc.Element) (Configuration, error) {
	c := Configuration{}
	c.Name, _ = el.Attr("name")
	tcRefEl, ok := el.FirstChildByTag("toolchain")
	if !ok {
		return c, pmerr.ConfigAt(el.Locator(), el.Path, "<configuration name=%q> missing required <toolchain> reference", c.Name)
	}
	c.ToolchainRef = tcRefEl.Text
	if e, ok := el.FirstChildByTag("optimization"); ok {
		c.Optimization = e.Text
	}
	if e, ok := el.FirstChildByTag("debugging"); ok {
		c.Debugging = e.Text
	}
	c.ExtraCcflags = textsOf(el.ChildrenByTag("ccflag"))
	c.ExtraLflags = textsOf(el.ChildrenByTag("lflag"))
	return c, nil
}

func readPrebuildRef(el *xmldoc.Element) (PrebuildRef, error) {
	pb := PrebuildRef{Subs: make(map[string]string)}
	path, ok := el.Attr("path")
	if !ok {
		return pb, pmerr.ConfigAt(el.Locator(), el.Path, "<project> entry under <prebuilds> missing required path attribute")
	}
	pb.Path = path

	if e, ok := el.FirstChildByTag("configfile"); ok {
		pb.ConfigFile, pb.HasConfigFile = e.Text, true
	}
	if e, ok := el.FirstChildByTag("configuration"); ok {
		pb.Configuration, pb.HasConfig = e.Text, true
	}
	if e, ok := el.FirstChildByTag("clean"); ok {
		pb.Clean, pb.HasClean = e.Text == "1" || e.Text == "true", true
	}
	if e, ok := el.FirstChildByTag("prebuilds"); ok {
		pb.DoPrebuilds, pb.HasDoPrebuilds = e.Text == "1" || e.Text == "true", true
	}
	for _, subEl := range el.ChildrenByTag("sub") {
		key, ok := subEl.Attr("key")
		if !ok {
			return pb, pmerr.ConfigAt(subEl.Locator(), subEl.Path, "<sub> missing required key attribute")
		}
		pb.Subs[key] = subEl.Text
	}
	return pb, nil
}

func assembleSources(projectDir string, srcsEl *xmldoc.Element) ([]SourceEntry, error) {
	var out []SourceEntry
	for _, fileEl := range srcsEl.ChildrenByTag("file") {
		pathAttr, ok := fileEl.Attr("path")
		if !ok {
			return nil, pmerr.ConfigAt(fileEl.Locator(), fileEl.Path, "<file> missing required path attribute")
		}

		var excludes []string
		for _, exEl := range fileEl.ChildrenByTag("exclude") {
			if p, ok := exEl.Attr("path"); ok {
				excludes = append(excludes, p)
			} else {
				excludes = append(excludes, exEl.Text)
			}
		}

		paths, err := expandSourcePath(projectDir, pathAttr, excludes)
		if err != nil {
			return nil, err
		}

		for _, p := range paths {
			entry := SourceEntry{
				Path:           p,
				PerFileCcflags: textsOf(fileEl.ChildrenByTag("ccflag")),
			}
			if e, ok := fileEl.FirstChildByTag("optimization"); ok {
				entry.PerFileOptimization, entry.HasPerFileOpt = e.Text, true
			}
			if e, ok := fileEl.FirstChildByTag("debugging"); ok {
				entry.PerFileDebugging, entry.HasPerFileDebugging = e.Text, true
			}
			out = append(out, entry)
		}
	}
	return out, nil
}

func validateProject(p *Project) error {
	seen := make(map[string]string, len(p.Sources))
	for _, s := range p.Sources {
		obj := ObjectPath(p.OutputDir, s.Path)
		if prior, ok := seen[obj]; ok {
			return pmerr.Config("duplicate object path %q produced by both %q and %q", obj, prior, s.Path)
		}
		seen[obj] = s.Path
	}
	if p.ArtifactKind == Executable && len(p.Sources) == 0 && len(p.Objects) == 0 {
		return pmerr.Config("executable %q has no <sources> and no <objects>", p.ArtifactName)
	}
	return nil
}
