package ast

// ---------- Statement Types ----------

// CreateTableStmt is CREATE [TEMPORARY] TABLE name AS query.
type CreateTableStmt struct {
	Name      string
	Temporary bool
	Query     Query
}

// InsertStmt is INSERT INTO table [(columns)] query.
type InsertStmt struct {
	Table   string
	Columns []string
	Query   Query
}

// UpdateStmt is UPDATE table AS alias SET ... FROM source WHERE ...
type UpdateStmt struct {
	Table string
	Alias string
	Set   []*Assignment
	From  *SourceExpr
	Where Expr
}

// Assignment is one SET column = value entry.
type Assignment struct {
	Column string
	Value  Expr
}

// DeleteStmt is DELETE FROM table AS alias WHERE ...
type DeleteStmt struct {
	Table string
	Alias string
	Where Expr
}

func (*CreateTableStmt) node()     {}
func (*CreateTableStmt) stmtNode() {}
func (*InsertStmt) node()          {}
func (*InsertStmt) stmtNode()      {}
func (*UpdateStmt) node()          {}
func (*UpdateStmt) stmtNode()      {}
func (*Assignment) node()          {}
func (*DeleteStmt) node()          {}
func (*DeleteStmt) stmtNode()      {}
