package agent

import "fmt"

// routingTemplate embeds the entity_data schema and the tool-selection
// guidelines around the user's question.
const routingTemplate = `
Task: Answer the user's question using the most appropriate method: either by querying the SQL database or by performing a semantic search on the document content.

### Available Methods:
1. **SQL Query**: Use this when the information is structured and can be retrieved using the database schema provided below. Generate a valid SQL query and execute it against the database.
2. **Semantic Search**: Use this when the information is better retrieved by finding relevant document excerpts based on semantic similarity.

### SQL Database Schema:
Table: entity_data
Columns:
  - company (TEXT): Name of the company.
  - year (INTEGER): Year of the report.
  - revenue (REAL): Total revenue in the given year.
  - risks (TEXT): Summary of risks.
  - human_capital (INTEGER): Total number of employees.

### Rules for SQL Queries:
1. Only use the column names and data types provided in the schema.
2. Ensure valid SQL syntax for SQLite.
3. Use appropriate filters (e.g., ` + "`year`, `company`" + `) when applicable.
4. Use SQL functions like ` + "`SUM`, `AVG`, or `GROUP BY`" + ` for aggregations if necessary.

### Semantic Search Rules:
1. Perform semantic search when the user's question requires insights or contextual information not available in the SQL database.
2. Retrieve and present relevant document excerpts ranked by semantic similarity.
3. Ensure the retrieved content directly addresses the user's question.

### Decision-Making Guidelines:
1. If the user's question explicitly involves structured data (e.g., "top companies by revenue" or "total employees in 2021"), prioritize SQL.
2. If the user's question requires understanding of context or reasoning (e.g., "What are Amazon's main risks?" or "Summarize Apple's report for 2021"), use semantic search.
3. When in doubt, start with semantic search and complement the answer with SQL data if applicable.

User's Question:
%s
`

func routingPrompt(question string) string {
	return fmt.Sprintf(routingTemplate, question)
}
