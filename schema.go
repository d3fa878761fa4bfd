package rowhook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"

	"github.com/mickamy/rowhook/internal/ident"
)

// SchemaConfig controls change table generation behaviour.
type SchemaConfig struct {
	Suffix           string // suffix appended to base table name (default: _changes)
	CreateRowIDIndex bool   // create an index on the new_row_id column
}

// TableNamer provides a custom table name for a model.
type TableNamer interface {
	TableName() string
}

// Migrate resolves table identifiers from the provided targets and creates
// their change tables.
func Migrate(ctx context.Context, db *sql.DB, cfg SchemaConfig, targets ...any) error {
	if cfg.Suffix == "" {
		cfg.Suffix = "_changes"
	}
	if len(targets) == 0 {
		return nil
	}
	for _, t := range targets {
		name, err := resolveTableName(t)
		if err != nil {
			return err
		}
		if err := createChangeTable(ctx, db, cfg, name); err != nil {
			return err
		}
	}
	return nil
}

func createChangeTable(ctx context.Context, db *sql.DB, cfg SchemaConfig, base string) error {
	changesParts := ident.SuffixParts(base, cfg.Suffix)
	changesIdent := ident.QuoteQualified(changesParts)
	if changesIdent == "" {
		return fmt.Errorf("rowhook: invalid change table identifier for %q", base)
	}
	columns := []string{
		"change_id INTEGER PRIMARY KEY AUTOINCREMENT",
		"action TEXT NOT NULL",
		"db_name TEXT NOT NULL",
		"tbl_name TEXT NOT NULL",
		"old_row_id INTEGER",
		"new_row_id INTEGER",
		"depth INTEGER NOT NULL",
		"operated_by TEXT",
		"trace_id TEXT",
		"reason TEXT",
		"before TEXT",
		"after TEXT",
		"recorded_at TEXT NOT NULL",
	}

	ddl := fmt.Sprintf(`
    CREATE TABLE IF NOT EXISTS %s (
        %s
    );
    `, changesIdent, strings.Join(columns, ",\n\t"))

	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return err
	}
	if cfg.CreateRowIDIndex {
		indexName := fmt.Sprintf("idx_%s_row_id", changesParts[len(changesParts)-1])
		stmt := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (new_row_id);`, ident.Quote(indexName), changesIdent)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

var tableNamerType = reflect.TypeOf((*TableNamer)(nil)).Elem()

func resolveTableName(target any) (string, error) {
	switch v := target.(type) {
	case nil:
		return "", errors.New("rowhook: nil table target")
	case string:
		name := strings.TrimSpace(v)
		if name == "" {
			return "", errors.New("rowhook: empty table name")
		}
		return name, nil
	}

	val := reflect.ValueOf(target)
	typ := val.Type()

	if typ.Kind() == reflect.Pointer {
		if val.IsNil() {
			return "", fmt.Errorf("rowhook: nil pointer target %T", target)
		}
		if namer, ok := val.Interface().(TableNamer); ok {
			name := strings.TrimSpace(namer.TableName())
			if name == "" {
				return "", fmt.Errorf("rowhook: TableName returned empty string. %T", target)
			}
			return name, nil
		}
		typ = typ.Elem()
		val = val.Elem()
	}

	if namer, ok := val.Interface().(TableNamer); ok {
		name := strings.TrimSpace(namer.TableName())
		if name == "" {
			return "", fmt.Errorf("rowhook: TableName returned empty string. %T", target)
		}
		return name, nil
	}

	if typ.Kind() == reflect.Struct {
		if reflect.PointerTo(typ).Implements(tableNamerType) {
			inst := reflect.New(typ)
			if namer, ok := inst.Interface().(TableNamer); ok {
				name := strings.TrimSpace(namer.TableName())
				if name == "" {
					return "", fmt.Errorf("rowhook: TableName returned empty string. %T", target)
				}
				return name, nil
			}
		}
		if typ.Name() == "" {
			return "", fmt.Errorf("rowhook: cannot derive table name for anonymous struct of type %v", typ)
		}
		return inflection.Plural(toSnakeCase(typ.Name())), nil
	}

	return "", fmt.Errorf("rowhook: unsupported table target %T", target)
}

func toSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
