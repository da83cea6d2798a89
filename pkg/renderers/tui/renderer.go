package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formcond/pkg/model"
	"github.com/goliatone/go-formcond/pkg/render"
)

// Renderer implements render.Renderer as an interactive terminal session.
// Fields are asked one at a time; after every answer the form is rebuilt
// through RenderOptions.Refresh so fields revealed by the answer are asked
// next and fields hidden by it are skipped and dropped from the output.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	infoWriter        io.Writer
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		infoWriter:   os.Stdout,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if _, ok := ParseOutputFormat(string(r.outputFormat)); !ok {
		return nil, fmt.Errorf("tui: unknown output format %q", r.outputFormat)
	}
	if r.driver == nil {
		r.driver = newSurveyDriver(r.infoWriter)
	}
	return r, nil
}

func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render runs the session and returns the collected values. Without a
// Refresh function the form is asked as given.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	state := NewState(opts.Values, render.MapErrors(form, opts.Errors).Fields)
	rulesCache := make(map[string]validationRules)
	asked := make(map[string]bool)

	current := form
	for {
		field, path, ok := nextField(current.Fields, "", asked)
		if !ok {
			break
		}
		asked[path] = true

		if err := r.reportErrors(ctx, field, path, state); err != nil {
			return nil, err
		}
		if err := r.promptField(ctx, field, path, state, rulesCache); err != nil {
			return nil, err
		}

		if opts.Refresh == nil {
			continue
		}
		refreshed, err := opts.Refresh(ctx, render.CloneValues(state.Values()))
		if err != nil {
			return nil, fmt.Errorf("tui: refresh form: %w", err)
		}
		current = refreshed
	}

	values := pruneValues(current.Fields, state.Values())
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}

	return r.serialize(values)
}

// nextField returns the first field, depth first, that has not been asked.
// Objects are never asked themselves; their nested fields are.
func nextField(fields []model.Field, parent string, asked map[string]bool) (model.Field, string, bool) {
	for _, field := range fields {
		path := fieldPath(field, parent)
		if field.Type == model.FieldTypeObject {
			if next, nextPath, ok := nextField(field.Nested, path, asked); ok {
				return next, nextPath, true
			}
			continue
		}
		if !asked[path] {
			return field, path, true
		}
	}
	return model.Field{}, "", false
}

func fieldPath(field model.Field, parent string) string {
	if field.Path != "" {
		return field.Path
	}
	if parent == "" {
		return field.Name
	}
	return parent + "." + field.Name
}

// pruneValues keeps only the values of fields present in the final form.
func pruneValues(fields []model.Field, values map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for _, field := range fields {
		value, ok := values[field.Name]
		if !ok {
			continue
		}
		if field.Type == model.FieldTypeObject {
			nested, isMap := value.(map[string]any)
			if !isMap {
				continue
			}
			out[field.Name] = pruneValues(field.Nested, nested)
			continue
		}
		out[field.Name] = value
	}
	return out
}

func (r *Renderer) reportErrors(ctx context.Context, field model.Field, path string, state *State) error {
	for _, message := range state.ErrorsFor(path) {
		if err := r.driver.Info(ctx, fmt.Sprintf("%s: %s", displayLabel(field), message)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) promptField(ctx context.Context, field model.Field, path string, state *State, rulesCache map[string]validationRules) error {
	switch field.Type {
	case model.FieldTypeBoolean:
		return r.promptBoolean(ctx, field, path, state, rulesCache)
	case model.FieldTypeInteger, model.FieldTypeNumber:
		if len(field.Enum) > 0 {
			return r.promptEnum(ctx, field, path, state, rulesCache)
		}
		return r.promptNumber(ctx, field, path, state, rulesCache)
	case model.FieldTypeArray:
		return r.promptArray(ctx, field, path, state, rulesCache)
	case model.FieldTypeObject:
		return r.promptObject(ctx, field, path, state, rulesCache)
	default:
		if len(field.Enum) > 0 {
			return r.promptEnum(ctx, field, path, state, rulesCache)
		}
		return r.promptString(ctx, field, path, state, rulesCache)
	}
}

func (r *Renderer) promptString(ctx context.Context, field model.Field, path string, state *State, rulesCache map[string]validationRules) error {
	label := displayLabel(field)
	help := displayHelp(field)
	rules := collectValidationRules(path, field, rulesCache)
	defaultVal := defaultStringValue(state, path, field.Default)

	usePassword := field.Format == "password" || field.UIHints["inputType"] == "password"
	isTextArea := field.UIHints["widget"] == "textarea"

	for {
		var response string
		var err error
		cfg := InputConfig{
			Message:     label,
			Default:     defaultVal,
			Help:        help,
			Placeholder: field.UIHints["placeholder"],
		}
		switch {
		case usePassword:
			response, err = r.driver.Password(ctx, cfg)
		case isTextArea:
			response, err = r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: defaultVal, Help: help})
		default:
			response, err = r.driver.Input(ctx, cfg)
		}
		if err != nil {
			return err
		}

		if !rules.required && strings.TrimSpace(response) == "" {
			return state.SetValue(path, response)
		}
		if err := rules.validateString(response); err != nil {
			if infoErr := r.driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", path, err)); infoErr != nil {
				return infoErr
			}
			continue
		}
		return state.SetValue(path, response)
	}
}

func (r *Renderer) promptBoolean(ctx context.Context, field model.Field, path string, state *State, _ map[string]validationRules) error {
	resp, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: displayLabel(field),
		Default: defaultBoolValue(state, path, field.Default),
		Help:    displayHelp(field),
	})
	if err != nil {
		return err
	}
	return state.SetValue(path, resp)
}

func (r *Renderer) promptNumber(ctx context.Context, field model.Field, path string, state *State, rulesCache map[string]validationRules) error {
	label := displayLabel(field)
	help := displayHelp(field)
	rules := collectValidationRules(path, field, rulesCache)
	defaultStr := ""
	if value, ok := defaultNumberValue(state, path, field.Default); ok {
		defaultStr = strconv.FormatFloat(value, 'f', -1, 64)
	}

	for {
		input, err := r.driver.Input(ctx, InputConfig{
			Message: label,
			Default: defaultStr,
			Help:    help,
		})
		if err != nil {
			return err
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			if rules.required {
				if err := r.driver.Info(ctx, fmt.Sprintf("Invalid %s: required", path)); err != nil {
					return err
				}
				continue
			}
			return state.SetValue(path, nil)
		}

		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err == nil && field.Type == model.FieldTypeInteger && parsed != float64(int64(parsed)) {
			err = errors.New("expected an integer")
		}
		if err == nil {
			err = rules.validateNumber(parsed)
		}
		if err != nil {
			if infoErr := r.driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", path, err)); infoErr != nil {
				return infoErr
			}
			continue
		}
		return state.SetValue(path, parsed)
	}
}

// promptEnum stores the enum member itself so numeric and boolean options
// keep their type for conditional matching.
func (r *Renderer) promptEnum(ctx context.Context, field model.Field, path string, state *State, _ map[string]validationRules) error {
	options := stringifyEnum(field.Enum)
	defaultIdx := -1
	if v, ok := state.GetValue(path); ok {
		defaultIdx = indexOf(options, fmt.Sprint(v))
	} else if field.Default != nil {
		defaultIdx = indexOf(options, fmt.Sprint(field.Default))
	}

	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      displayLabel(field),
			Options:      options,
			DefaultIndex: defaultIdx,
			Help:         displayHelp(field),
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(options) {
			if err := r.driver.Info(ctx, fmt.Sprintf("Invalid %s selection", path)); err != nil {
				return err
			}
			continue
		}
		return state.SetValue(path, field.Enum[idx])
	}
}

func (r *Renderer) promptArray(ctx context.Context, field model.Field, path string, state *State, rulesCache map[string]validationRules) error {
	if field.Items == nil {
		return fmt.Errorf("tui: array field %s missing items schema", path)
	}
	rules := collectValidationRules(path, field, rulesCache)

	// Enum items become a multi select.
	if len(field.Items.Enum) > 0 {
		options := stringifyEnum(field.Items.Enum)
		defaults := indicesOf(options, stringifySlice(getArrayValue(state, path)))
		for {
			indices, err := r.driver.MultiSelect(ctx, SelectConfig{
				Message:  displayLabel(field),
				Options:  options,
				Defaults: defaults,
				Help:     displayHelp(field),
			})
			if err != nil {
				return err
			}
			selected := make([]any, 0, len(indices))
			for _, idx := range indices {
				if idx >= 0 && idx < len(field.Items.Enum) {
					selected = append(selected, field.Items.Enum[idx])
				}
			}
			if err := rules.validateArray(selected); err != nil {
				if infoErr := r.driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", path, err)); infoErr != nil {
					return infoErr
				}
				continue
			}
			return state.SetValue(path, selected)
		}
	}

	items := getArrayValue(state, path)
	if len(items) == 0 && !rules.required {
		add, err := r.driver.Confirm(ctx, ConfirmConfig{Message: fmt.Sprintf("Add %s?", displayLabel(field))})
		if err != nil {
			return err
		}
		if !add {
			return state.SetValue(path, []any{})
		}
	}

	for {
		itemPath := fmt.Sprintf("%s.%d", path, len(items))
		if err := r.promptField(ctx, *field.Items, itemPath, state, rulesCache); err != nil {
			return err
		}
		val, _ := state.GetValue(itemPath)
		items = append(items, val)

		more, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Add another?"})
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}

	if err := rules.validateArray(items); err != nil {
		return fmt.Errorf("tui: %s: %w", path, err)
	}
	return state.SetValue(path, items)
}

// promptObject asks nested fields of array items. Top level objects are
// walked by Render so refreshes apply to their fields too.
func (r *Renderer) promptObject(ctx context.Context, field model.Field, path string, state *State, rulesCache map[string]validationRules) error {
	for _, child := range field.Nested {
		if err := r.promptField(ctx, child, path+"."+child.Name, state, rulesCache); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.MarshalIndent(values, "", "  ")
	}
}

func displayLabel(field model.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Name
}

func displayHelp(field model.Field) string {
	if h := field.UIHints["helpText"]; h != "" {
		return h
	}
	return field.Description
}

func stringifyEnum(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, fmt.Sprint(v))
	}
	return out
}

func stringifySlice(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, fmt.Sprint(v))
	}
	return out
}

func getArrayValue(state *State, path string) []any {
	if v, ok := state.GetValue(path); ok {
		if arr, ok := v.([]any); ok {
			return append([]any(nil), arr...)
		}
	}
	return nil
}

func defaultStringValue(state *State, path string, def any) string {
	if v, ok := state.GetValue(path); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	if s, ok := def.(string); ok {
		return s
	}
	return ""
}

func defaultBoolValue(state *State, path string, def any) bool {
	if v, ok := state.GetValue(path); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	b, _ := def.(bool)
	return b
}

func defaultNumberValue(state *State, path string, def any) (float64, bool) {
	if v, ok := state.GetValue(path); ok {
		if n, ok := toFloat(v); ok {
			return n, true
		}
	}
	return toFloat(def)
}

func toFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

type validationRules struct {
	required bool
	min      *float64
	max      *float64
	minLen   *int
	maxLen   *int
	pattern  *regexp.Regexp
}

func collectValidationRules(path string, field model.Field, cache map[string]validationRules) validationRules {
	if rules, ok := cache[path]; ok {
		return rules
	}
	rules := validationRules{required: field.Required}
	for _, v := range field.Validations {
		switch v.Kind {
		case model.ValidationRuleMin:
			if val, err := strconv.ParseFloat(v.Params["value"], 64); err == nil {
				rules.min = &val
			}
		case model.ValidationRuleMax:
			if val, err := strconv.ParseFloat(v.Params["value"], 64); err == nil {
				rules.max = &val
			}
		case model.ValidationRuleMinLength:
			if val, err := strconv.Atoi(v.Params["value"]); err == nil {
				rules.minLen = &val
			}
		case model.ValidationRuleMaxLength:
			if val, err := strconv.Atoi(v.Params["value"]); err == nil {
				rules.maxLen = &val
			}
		case model.ValidationRulePattern:
			if expr := v.Params["pattern"]; expr != "" {
				if re, err := regexp.Compile(expr); err == nil {
					rules.pattern = re
				}
			}
		}
	}
	cache[path] = rules
	return rules
}

func (r validationRules) validateString(value string) error {
	if r.required && strings.TrimSpace(value) == "" {
		return errors.New("required")
	}
	if r.minLen != nil && len(value) < *r.minLen {
		return fmt.Errorf("min length %d", *r.minLen)
	}
	if r.maxLen != nil && len(value) > *r.maxLen {
		return fmt.Errorf("max length %d", *r.maxLen)
	}
	if r.pattern != nil && !r.pattern.MatchString(value) {
		return errors.New("does not match required pattern")
	}
	return nil
}

func (r validationRules) validateNumber(value float64) error {
	if r.min != nil && value < *r.min {
		return fmt.Errorf("min %v", *r.min)
	}
	if r.max != nil && value > *r.max {
		return fmt.Errorf("max %v", *r.max)
	}
	return nil
}

func (r validationRules) validateArray(value []any) error {
	if r.required && len(value) == 0 {
		return errors.New("required")
	}
	return nil
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	flatten("", values, flattened)
	return flattened.Encode()
}

func flatten(prefix string, value any, out url.Values) {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			flatten(joinKey(prefix, key), val, out)
		}
	case []any:
		for _, val := range v {
			out.Add(prefix+"[]", scalarString(val))
		}
	default:
		out.Set(prefix, scalarString(v))
	}
}

func prettyPrint(values map[string]any) string {
	var b strings.Builder
	writePretty(&b, "", values)
	return b.String()
}

func writePretty(b *strings.Builder, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			writePretty(b, joinKey(prefix, key), v[key])
		}
	case []any:
		for idx, val := range v {
			writePretty(b, fmt.Sprintf("%s[%d]", prefix, idx), val)
		}
	default:
		if prefix != "" {
			fmt.Fprintf(b, "%s=%s\n", prefix, scalarString(v))
		}
	}
}

func scalarString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
