package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"shop-insights/internal/analytics"
	"shop-insights/internal/tools"
)

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderTable(w io.Writer, v any) error {
	var out strings.Builder

	switch r := v.(type) {
	case *tools.Envelope:
		out.WriteString(pterm.Info.Sprintln(r.Summary))
		if rows := tabulate(r.Data); len(rows) > 1 {
			if err := writeTable(&out, rows); err != nil {
				return err
			}
		}
		m := r.Metadata
		out.WriteString(pterm.FgGray.Sprintf("%s to %s · %d records · data as of %s\n",
			m.DateRangeStart, m.DateRangeEnd, m.RecordCount, m.DataAsOf))

	case *tools.ErrorEnvelope:
		out.WriteString(pterm.Error.Sprintln(fmt.Sprintf("%s: %s", r.ErrorType, r.Message)))
		items := make([]pterm.BulletListItem, 0, len(r.Suggestions))
		for _, s := range r.Suggestions {
			items = append(items, pterm.BulletListItem{Level: 0, Text: s})
		}
		list, err := pterm.DefaultBulletList.WithItems(items).Srender()
		if err != nil {
			return err
		}
		out.WriteString(list)

	case []analytics.Capability:
		rows := pterm.TableData{{"Tool", "Parameters", "Description"}}
		for _, c := range r {
			names := make([]string, 0, len(c.Parameters))
			for _, p := range c.Parameters {
				names = append(names, p.Name)
			}
			rows = append(rows, []string{c.ToolName, strings.Join(names, ", "), c.Description})
		}
		if err := writeTable(&out, rows); err != nil {
			return err
		}

	default:
		return renderJSON(w, v)
	}

	_, err := io.WriteString(w, out.String())
	return err
}

func writeTable(out *strings.Builder, rows pterm.TableData) error {
	table, err := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(rows).
		Srender()
	if err != nil {
		return err
	}
	out.WriteString(table)
	out.WriteString("\n")
	return nil
}

// tabulate lays out a report: the rows of its Data slice when it has one,
// otherwise one field per line.
func tabulate(report any) pterm.TableData {
	v := reflect.Indirect(reflect.ValueOf(report))
	if v.Kind() != reflect.Struct {
		return nil
	}

	if data := v.FieldByName("Data"); data.IsValid() && data.Kind() == reflect.Slice && data.Type().Elem().Kind() == reflect.Struct {
		fields := jsonFields(data.Type().Elem())
		header := make([]string, len(fields))
		for i, f := range fields {
			header[i] = f.name
		}
		rows := pterm.TableData{header}
		for i := range data.Len() {
			item := data.Index(i)
			row := make([]string, len(fields))
			for j, f := range fields {
				row[j] = formatCell(item.Field(f.index))
			}
			rows = append(rows, row)
		}
		return rows
	}

	rows := pterm.TableData{{"Field", "Value"}}
	return appendFields(rows, "", v)
}

type jsonField struct {
	name  string
	index int
}

func jsonFields(t reflect.Type) []jsonField {
	var out []jsonField
	for i := range t.NumField() {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if !f.IsExported() || name == "" || name == "-" {
			continue
		}
		out = append(out, jsonField{name: name, index: i})
	}
	return out
}

func appendFields(rows pterm.TableData, prefix string, v reflect.Value) pterm.TableData {
	for _, f := range jsonFields(v.Type()) {
		field := v.Field(f.index)
		if field.Kind() == reflect.Struct {
			rows = appendFields(rows, prefix+f.name+".", field)
			continue
		}
		rows = append(rows, []string{prefix + f.name, formatCell(field)})
	}
	return rows
}

func formatCell(v reflect.Value) string {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return "n/a"
		}
		return formatCell(v.Elem())
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', 2, 64)
	case reflect.Slice:
		parts := make([]string, v.Len())
		for i := range v.Len() {
			item := reflect.Indirect(v.Index(i))
			if item.Kind() == reflect.Struct && item.NumField() > 0 {
				item = item.Field(0)
			}
			parts[i] = formatCell(item)
		}
		return strings.Join(parts, ", ")
	}
	if !v.IsValid() || !v.CanInterface() {
		return ""
	}
	return fmt.Sprint(v.Interface())
}
