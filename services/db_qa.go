package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/xwb1989/sqlparser"

	"github.com/tlcdata/ai-agent/models"
)

const sqlSystemPrompt = `You generate one safe Postgres SELECT statement. ` +
	`SELECT only; use only the allowed tables and columns listed by the user; ` +
	`use named placeholders such as :p1, :p2 for every literal value; ` +
	`respond with a JSON object containing sql, params and rationale.`

// forbiddenKeywords are rejected as substrings anywhere in the
// statement, string literals and comments included. Deliberately
// conservative: a textual check backs up the parser, at the cost of
// rejecting safe SQL that merely contains one of these words.
var forbiddenKeywords = []string{
	"insert", "update", "delete", "drop", "alter", "create",
	"grant", "revoke", "truncate", "call", "copy",
}

// RowQuerier executes one validated read-only statement and returns
// its result shape.
type RowQuerier interface {
	Query(ctx context.Context, sqlText string, args []interface{}) (columns []string, rows [][]interface{}, err error)
}

// DBQAService answers data questions by generating SQL with the model,
// validating it against the schema catalog and executing it.
type DBQAService struct {
	chat    ChatClient
	model   string
	catalog *SchemaCatalog
	querier RowQuerier
	maxRows int
}

func NewDBQAService(chat ChatClient, model string, catalog *SchemaCatalog, querier RowQuerier, maxRows int) *DBQAService {
	return &DBQAService{chat: chat, model: model, catalog: catalog, querier: querier, maxRows: maxRows}
}

// Answer runs the generation -> validation -> execution pipeline. Each
// stage short-circuits the next on failure with a structured error.
func (s *DBQAService) Answer(ctx context.Context, question string, metadata map[string]interface{}) models.AnswerEnvelope {
	fail := func(message string) models.AnswerEnvelope {
		return models.AnswerEnvelope{Intent: models.IntentDB, Error: message}
	}

	user := fmt.Sprintf(
		"Question: %s\nAllowed tables:\n%s\nRespond with a JSON object containing sql, params and rationale.",
		question, s.catalog.PromptText(),
	)
	generation := s.chat.Chat(ctx, s.model, sqlSystemPrompt, user, ChatOptions{JSONResponse: true})
	if !generation.OK {
		return fail(generation.Err)
	}

	var plan models.SQLPlan
	if err := json.Unmarshal([]byte(generation.Content), &plan); err != nil {
		return fail(fmt.Sprintf("could not decode generated SQL plan: %v", err))
	}
	if plan.Params == nil {
		plan.Params = map[string]interface{}{}
	}

	if reason := s.validate(plan.SQL); reason != "" {
		return fail("invalid SQL: " + reason)
	}

	statement, args, err := rewriteNamedParams(plan.SQL, plan.Params)
	if err != nil {
		return fail("invalid SQL: " + err.Error())
	}
	columns, rows, err := s.querier.Query(ctx, statement, args)
	if err != nil {
		return fail(fmt.Sprintf("SQL execution failed: %v", err))
	}
	if len(rows) > s.maxRows {
		rows = rows[:s.maxRows]
	}

	return models.AnswerEnvelope{
		OK:      true,
		Intent:  models.IntentDB,
		SQL:     plan.SQL,
		Params:  plan.Params,
		Columns: columns,
		Rows:    rows,
	}
}

// validate returns a rejection reason, or "" when the statement may be
// executed. Order matters: shape first, statement type, then the
// textual keyword scan, then the catalog cross-check.
func (s *DBQAService) validate(sqlText string) string {
	if strings.TrimSpace(sqlText) == "" {
		return "empty SQL"
	}

	pieces, err := sqlparser.SplitStatementToPieces(sqlText)
	if err != nil || len(pieces) != 1 {
		return "exactly one statement is required"
	}

	stmt, err := sqlparser.Parse(sqlText)
	if err != nil {
		return fmt.Sprintf("could not parse statement: %v", err)
	}
	if _, ok := stmt.(sqlparser.SelectStatement); !ok {
		return "only SELECT is allowed"
	}

	lowered := strings.ToLower(sqlText)
	for _, keyword := range forbiddenKeywords {
		if strings.Contains(lowered, keyword) {
			return "contains forbidden operation: " + keyword
		}
	}

	return s.checkIdentifiers(stmt)
}

// checkIdentifiers enforces the catalog allow-list on the parse tree:
// every referenced table must be a catalog table and every qualified
// column must belong to the table its qualifier resolves to. Aliases
// are resolved from the FROM clause; unqualified columns are not
// checked, matching the two-part-identifier rule.
func (s *DBQAService) checkIdentifiers(stmt sqlparser.Statement) string {
	aliases := map[string]string{}
	reason := ""

	_ = sqlparser.Walk(func(node sqlparser.SQLNode) (bool, error) {
		aliased, ok := node.(*sqlparser.AliasedTableExpr)
		if !ok {
			return true, nil
		}
		name, ok := aliased.Expr.(sqlparser.TableName)
		if !ok {
			return true, nil
		}
		table := tableKey(name)
		if _, found := s.catalog.Lookup(table); !found {
			reason = "table not allowed: " + table
			return false, errors.New(reason)
		}
		if !aliased.As.IsEmpty() {
			aliases[strings.ToLower(aliased.As.String())] = table
		}
		return true, nil
	}, stmt)
	if reason != "" {
		return reason
	}

	_ = sqlparser.Walk(func(node sqlparser.SQLNode) (bool, error) {
		column, ok := node.(*sqlparser.ColName)
		if !ok || column.Qualifier.IsEmpty() {
			return true, nil
		}
		qualifier := tableKey(column.Qualifier)
		table := qualifier
		if resolved, found := aliases[strings.ToLower(qualifier)]; found {
			table = resolved
		}
		columns, found := s.catalog.Lookup(table)
		if !found {
			reason = "table not allowed: " + qualifier
			return false, errors.New(reason)
		}
		if !columns[column.Name.Lowered()] {
			reason = fmt.Sprintf("column not allowed: %s.%s", qualifier, column.Name.String())
			return false, errors.New(reason)
		}
		return true, nil
	}, stmt)

	return reason
}

func tableKey(name sqlparser.TableName) string {
	if name.Qualifier.IsEmpty() {
		return name.Name.String()
	}
	return name.Qualifier.String() + "." + name.Name.String()
}

var placeholderPattern = regexp.MustCompile(`:([a-zA-Z_][a-zA-Z0-9_]*)`)

// rewriteNamedParams converts :name placeholders to positional $n in
// first-appearance order and returns the matching argument slice.
// lib/pq has no native named-parameter support. A placeholder with no
// value in params is an error; it must not silently bind NULL.
func rewriteNamedParams(sqlText string, params map[string]interface{}) (string, []interface{}, error) {
	positions := map[string]int{}
	args := make([]interface{}, 0, len(params))
	var missing []string

	rewritten := placeholderPattern.ReplaceAllStringFunc(sqlText, func(match string) string {
		name := match[1:]
		index, seen := positions[name]
		if !seen {
			value, bound := params[name]
			if !bound {
				missing = append(missing, name)
			}
			args = append(args, value)
			index = len(args)
			positions[name] = index
		}
		return fmt.Sprintf("$%d", index)
	})

	if len(missing) > 0 {
		return "", nil, fmt.Errorf("missing parameter: %s", strings.Join(missing, ", "))
	}
	return rewritten, args, nil
}
