package pagekit

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pagekit-dev/pagekit/internal/errors"
	"github.com/pagekit-dev/pagekit/pkg/html"
	"github.com/pagekit-dev/pagekit/pkg/pagefiles"
)

// HookFunc is the signature of user-supplied lifecycle hooks such as
// onBeforeRender and render. The returned value's allowed shape depends on
// the hook; see invokeHook.
type HookFunc func(ctx context.Context, pc *PageContext) (any, error)

// hook is a resolved, callable hook together with its provenance.
type hook struct {
	name     string
	filePath string
	fn       HookFunc
}

// findHook resolves a hook by export name. The first contribution wins
// (page-specific before default). Returns nil when no file exports the
// hook.
func findHook(all pagefiles.ExportsAll, name string) (*hook, error) {
	exports := all[name]
	if len(exports) == 0 {
		return nil, nil
	}
	e := exports[0]
	fn, ok := asHookFunc(e.Value)
	if !ok {
		return nil, errors.Usage(
			"the %s() hook defined by %s should be a pagekit.HookFunc, got %T",
			name, e.FilePath, e.Value)
	}
	return &hook{name: name, filePath: e.FilePath, fn: fn}, nil
}

func asHookFunc(v any) (HookFunc, bool) {
	switch fn := v.(type) {
	case HookFunc:
		return fn, true
	case func(context.Context, *PageContext) (any, error):
		return fn, true
	default:
		return nil, false
	}
}

// call runs the hook, converting panics and returned errors into user-code
// errors carrying the hook's provenance.
func (h *hook) call(ctx context.Context, pc *PageContext) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.UserCode(fmt.Errorf("the %s() hook defined by %s panicked: %v", h.name, h.filePath, r))
		}
	}()
	result, err = h.fn(ctx, pc)
	if err != nil {
		return nil, errors.UserCode(fmt.Errorf("the %s() hook defined by %s failed: %w", h.name, h.filePath, err))
	}
	return result, nil
}

// assertHookResult checks that a hook's return value is nil or a map whose
// keys all belong to allowedKeys, and returns the map. Unexpected keys are
// a usage error naming the offenders and the allowed set.
func assertHookResult(h *hook, result any, allowedKeys []string) (map[string]any, error) {
	if result == nil {
		return nil, nil
	}
	m, ok := result.(map[string]any)
	if !ok {
		return nil, errors.Usage(
			"the %s() hook defined by %s should return nil or a map[string]any, got %T",
			h.name, h.filePath, result)
	}
	var unexpected []string
	for key := range m {
		allowed := false
		for _, k := range allowedKeys {
			if key == k {
				allowed = true
				break
			}
		}
		if !allowed {
			unexpected = append(unexpected, key)
		}
	}
	if len(unexpected) > 0 {
		sort.Strings(unexpected)
		return nil, errors.Usage(
			"the %s() hook defined by %s returned unexpected key(s) %s, allowed: %s",
			h.name, h.filePath,
			strings.Join(unexpected, ", "), strings.Join(allowedKeys, ", "))
	}
	return m, nil
}

// runOnBeforeRender invokes the page's onBeforeRender hook if any. The
// hook's `pageContext` additions are merged into Props.
func runOnBeforeRender(ctx context.Context, pc *PageContext) error {
	h, err := findHook(pc.ExportsAll, "onBeforeRender")
	if err != nil {
		return err
	}
	if h == nil {
		return nil
	}
	result, err := h.call(ctx, pc)
	if err != nil {
		return err
	}
	m, err := assertHookResult(h, result, []string{"pageContext"})
	if err != nil {
		return err
	}
	if m == nil {
		return nil
	}
	additions, ok := m["pageContext"].(map[string]any)
	if !ok && m["pageContext"] != nil {
		return errors.Usage(
			"the pageContext value returned by the onBeforeRender() hook defined by %s should be a map[string]any, got %T",
			h.filePath, m["pageContext"])
	}
	pc.mergeProps(additions)
	return nil
}

// renderResult is the validated outcome of the render() hook.
type renderResult struct {
	// documentHTML is the sanitized document, invalid when the hook
	// declined to produce one.
	documentHTML html.Sanitized
}

// runRenderHook invokes the page's render hook. A missing hook and a bare
// string result are usage errors; accepted shapes are nil, a bare
// html.Sanitized, or a map {documentHtml, pageContext}.
func runRenderHook(ctx context.Context, pc *PageContext) (*renderResult, error) {
	h, err := findHook(pc.ExportsAll, "render")
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, errors.New("P005").
			WithDetail("No render() hook found for page " + pc.pageID)
	}
	result, err := h.call(ctx, pc)
	if err != nil {
		return nil, err
	}
	return assertRenderResult(h, pc, result)
}

func assertRenderResult(h *hook, pc *PageContext, result any) (*renderResult, error) {
	switch value := result.(type) {
	case nil:
		return &renderResult{}, nil
	case html.Sanitized:
		return &renderResult{documentHTML: value}, nil
	case string:
		return nil, errors.New("P006").
			WithDetail(fmt.Sprintf("The render() hook defined by %s returned a plain string.", h.filePath))
	case map[string]any:
		m, err := assertHookResult(h, result, []string{"documentHtml", "pageContext"})
		if err != nil {
			return nil, err
		}
		if raw, ok := m["pageContext"]; ok && raw != nil {
			additions, ok := raw.(map[string]any)
			if !ok {
				return nil, errors.Usage(
					"the pageContext value returned by the render() hook defined by %s should be a map[string]any, got %T",
					h.filePath, raw)
			}
			pc.mergeProps(additions)
		}
		switch doc := m["documentHtml"].(type) {
		case nil:
			return &renderResult{}, nil
		case html.Sanitized:
			return &renderResult{documentHTML: doc}, nil
		case string:
			return nil, errors.New("P006").
				WithDetail(fmt.Sprintf("The documentHtml returned by the render() hook defined by %s is a plain string.", h.filePath))
		default:
			return nil, errors.Usage(
				"the documentHtml returned by the render() hook defined by %s should be html.Sanitized, got %T",
				h.filePath, doc)
		}
	default:
		return nil, errors.Usage(
			"the render() hook defined by %s should return nil, html.Sanitized, or a map with keys documentHtml and pageContext, got %T",
			h.filePath, result)
	}
}
