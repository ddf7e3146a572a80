package manifest

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Column is one field of a table description.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	Extra    string
}

// TableDescription describes an entity table. IDField is the primary key.
type TableDescription struct {
	Name    string
	IDField string
	Columns []Column
}

// DefaultTable builds the fixed table template used by the "default" table
// strategy: the id plus title and the created/modified audit columns.
func DefaultTable(component, singular string) TableDescription {
	id := IDFieldName(component, singular)
	return TableDescription{
		Name:    TableName(component, singular),
		IDField: id,
		Columns: []Column{
			{Name: id, Type: "INT(11) UNSIGNED", Extra: "AUTO_INCREMENT"},
			{Name: "title", Type: "VARCHAR(255)"},
			{Name: "created_on", Type: "DATE"},
			{Name: "created_by", Type: "INT(11) UNSIGNED"},
			{Name: "modified_on", Type: "DATE"},
			{Name: "modified_by", Type: "INT(11) UNSIGNED"},
		},
	}
}

// IDColumn returns the auto-increment primary key column for a table.
func IDColumn(component, singular string) Column {
	return Column{Name: IDFieldName(component, singular), Type: "INT(11) UNSIGNED", Extra: "AUTO_INCREMENT"}
}

// TableName is "#__<component>_<singular>".
func TableName(component, singular string) string {
	return "#__" + component + "_" + singular
}

// IDFieldName is "<component>_<singular>_id".
func IDFieldName(component, singular string) string {
	return component + "_" + singular + "_id"
}

type tableDocument struct {
	XMLName  xml.Name      `xml:"xml"`
	Database tableDatabase `xml:"database"`
}

type tableDatabase struct {
	Table tableStructure `xml:"table_structure"`
}

type tableStructure struct {
	Name   string       `xml:"name,attr"`
	Fields []tableField `xml:"field"`
	Keys   []tableKey   `xml:"key"`
}

type tableField struct {
	Field string `xml:"Field,attr"`
	Type  string `xml:"Type,attr"`
	Null  string `xml:"Null,attr"`
	Extra string `xml:"Extra,attr,omitempty"`
}

type tableKey struct {
	KeyName    string `xml:"Key_name,attr"`
	ColumnName string `xml:"Column_name,attr"`
}

// RenderTable serializes a table description into the table-structure
// document understood by the Joomla database importer.
func RenderTable(t TableDescription) ([]byte, error) {
	doc := tableDocument{Database: tableDatabase{Table: tableStructure{Name: t.Name}}}
	for _, c := range t.Columns {
		null := "NO"
		if c.Nullable {
			null = "YES"
		}
		doc.Database.Table.Fields = append(doc.Database.Table.Fields, tableField{
			Field: c.Name,
			Type:  c.Type,
			Null:  null,
			Extra: c.Extra,
		})
	}
	if t.IDField != "" {
		doc.Database.Table.Keys = append(doc.Database.Table.Keys, tableKey{KeyName: "PRIMARY", ColumnName: t.IDField})
	}
	return render(doc)
}

// RenderCreateTable renders the MySQL statement creating t.
func RenderCreateTable(t TableDescription) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS `%s` (\n", t.Name)
	for _, c := range t.Columns {
		null := "NOT NULL"
		if c.Nullable {
			null = "NULL"
		}
		line := fmt.Sprintf("  `%s` %s %s", c.Name, c.Type, null)
		if c.Extra != "" {
			line += " " + c.Extra
		}
		b.WriteString(line + ",\n")
	}
	if t.IDField != "" {
		fmt.Fprintf(&b, "  PRIMARY KEY (`%s`)\n", t.IDField)
	} else {
		// drop the trailing comma of the last column
		s := strings.TrimSuffix(b.String(), ",\n")
		b.Reset()
		b.WriteString(s + "\n")
	}
	b.WriteString(") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 DEFAULT COLLATE=utf8mb4_unicode_ci;\n")
	return b.String()
}
