package extract

import (
	"regexp"
	"strings"

	"symindex/internal/engine/symbols"
)

const sqlIdent = "(?:`|\"|\\[)?([a-zA-Z_][a-zA-Z0-9_$]*)(?:`|\"|\\])?"

// sqlName is an object name with optional qualifiers (db.schema.name); only
// the last part is captured.
const sqlName = "(?:(?:`|\"|\\[)?[a-zA-Z_][a-zA-Z0-9_$]*(?:`|\"|\\])?\\s*\\.\\s*)*" + sqlIdent

var (
	sqlCreateDatabase  = regexp.MustCompile(`(?i)^\s*CREATE\s+DATABASE\s+(?:IF\s+NOT\s+EXISTS\s+)?` + sqlIdent)
	sqlCreateSchema    = regexp.MustCompile(`(?i)^\s*CREATE\s+SCHEMA\s+(?:IF\s+NOT\s+EXISTS\s+)?` + sqlIdent)
	sqlCreateTable     = regexp.MustCompile(`(?i)^\s*CREATE\s+(?:(?:GLOBAL|LOCAL)\s+)?(?:TEMPORARY\s+|TEMP\s+)?TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?` + sqlName)
	sqlCreateView      = regexp.MustCompile(`(?i)^\s*CREATE\s+(?:OR\s+REPLACE\s+)?(?:MATERIALIZED\s+)?VIEW\s+` + sqlName)
	sqlCreateIndex     = regexp.MustCompile(`(?i)^\s*CREATE\s+(?:UNIQUE\s+)?INDEX\s+(?:IF\s+NOT\s+EXISTS\s+)?` + sqlName)
	sqlCreateTrigger   = regexp.MustCompile(`(?i)^\s*CREATE\s+(?:OR\s+REPLACE\s+)?TRIGGER\s+` + sqlName)
	sqlCreateFunction  = regexp.MustCompile(`(?i)^\s*CREATE\s+(?:OR\s+REPLACE\s+)?FUNCTION\s+` + sqlName)
	sqlCreateProcedure = regexp.MustCompile(`(?i)^\s*CREATE\s+(?:OR\s+REPLACE\s+)?PROCEDURE\s+` + sqlName)
	sqlAlterTable      = regexp.MustCompile(`(?i)^\s*ALTER\s+TABLE\s+` + sqlName)
	sqlDrop            = regexp.MustCompile(`(?i)^\s*DROP\s+(TABLE|VIEW|INDEX|TRIGGER|FUNCTION|PROCEDURE|DATABASE|SCHEMA)\s+(?:IF\s+EXISTS\s+)?` + sqlName)
	sqlWith            = regexp.MustCompile(`(?i)^\s*WITH\s+(?:RECURSIVE\s+)?` + sqlIdent + `\s+AS`)
)

const sqlRoutineScanLines = 20

type sqlState struct {
	path     string
	lines    []string
	out      []symbols.Symbol
	database string
	schema   string
}

func extractSQL(content, path string) []symbols.Symbol {
	st := &sqlState{path: path, lines: splitLines(content)}
	for i, line := range st.lines {
		trimmed := strings.TrimSpace(line)
		if isCommentOrBlank(trimmed, "--", "/*") {
			continue
		}
		st.line(i, line, trimmed)
	}
	return st.out
}

func (st *sqlState) parents() string {
	if st.schema == "" {
		return st.database
	}
	return st.database + "." + st.schema
}

func (st *sqlState) add(name, typ string, start, end int, parents, signature string) {
	st.out = append(st.out, symbols.New(name, typ, st.path, start+1, end+1, parents, signature))
}

func (st *sqlState) line(i int, line, trimmed string) {
	if m := sqlCreateDatabase.FindStringSubmatch(line); m != nil {
		st.database = m[1]
		st.schema = ""
		st.add(m[1], "database", i, i, "", "CREATE DATABASE "+m[1])
		return
	}
	if m := sqlCreateSchema.FindStringSubmatch(line); m != nil {
		st.schema = m[1]
		st.add(m[1], "schema", i, i, st.database, "CREATE SCHEMA "+m[1])
		return
	}
	if m := sqlCreateTable.FindStringSubmatch(line); m != nil {
		st.add(m[1], "table", i, st.parenEnd(i), st.parents(), "CREATE TABLE "+m[1])
		return
	}
	if m := sqlCreateView.FindStringSubmatch(line); m != nil {
		st.add(m[1], "view", i, st.statementEnd(i, false), st.parents(), "CREATE VIEW "+m[1])
		return
	}
	if m := sqlCreateIndex.FindStringSubmatch(line); m != nil {
		st.add(m[1], "index", i, st.statementEnd(i, true), st.parents(), "CREATE INDEX "+m[1])
		return
	}
	if m := sqlCreateTrigger.FindStringSubmatch(line); m != nil {
		end := i
		for j := i + 1; j < len(st.lines); j++ {
			if strings.HasSuffix(strings.ToLower(strings.TrimSpace(st.lines[j])), "end;") {
				end = j
				break
			}
		}
		st.add(m[1], "trigger", i, end, st.parents(), "CREATE TRIGGER "+m[1])
		return
	}
	if m := sqlCreateFunction.FindStringSubmatch(line); m != nil {
		st.add(m[1], symbols.TypeFunction, i, st.routineEnd(i), st.parents(), "CREATE FUNCTION "+m[1])
		return
	}
	if m := sqlCreateProcedure.FindStringSubmatch(line); m != nil {
		st.add(m[1], "procedure", i, st.routineEnd(i), st.parents(), "CREATE PROCEDURE "+m[1])
		return
	}
	if m := sqlWith.FindStringSubmatch(line); m != nil {
		st.add(m[1], "cte", i, i, "", "WITH "+m[1]+" AS")
		return
	}
	if m := sqlAlterTable.FindStringSubmatch(line); m != nil {
		st.add(m[1], "alter_table", i, i, "", "ALTER TABLE "+m[1])
		return
	}
	if m := sqlDrop.FindStringSubmatch(line); m != nil {
		kind := strings.ToLower(m[1])
		st.add(m[2], "drop_"+kind, i, i, "", "DROP "+strings.ToUpper(kind)+" "+m[2])
	}
}

// parenEnd follows an opening column list to its closing paren.
func (st *sqlState) parenEnd(i int) int {
	if !strings.Contains(st.lines[i], "(") {
		return i
	}
	_, end, _, ok := matchParens(st.lines, i, 0)
	if !ok {
		return i
	}
	return end
}

// statementEnd is the first line at or after i (after i when sameLine is
// false) that carries a ';'.
func (st *sqlState) statementEnd(i int, sameLine bool) int {
	from := i + 1
	if sameLine {
		from = i
	}
	for j := from; j < len(st.lines); j++ {
		if strings.Contains(st.lines[j], ";") {
			return j
		}
	}
	return i
}

// routineEnd closes a function or procedure: END; for a BEGIN body,
// otherwise the first ';' within the scan window.
func (st *sqlState) routineEnd(i int) int {
	hasBody := false
	for j := i; j < len(st.lines) && j < i+sqlRoutineScanLines; j++ {
		next := strings.ToLower(strings.TrimSpace(st.lines[j]))
		if strings.Contains(next, "begin") {
			hasBody = true
		}
		if hasBody && strings.HasSuffix(next, "end;") {
			return j
		}
		if !hasBody && strings.Contains(next, ";") {
			return j
		}
	}
	return i
}
