// Package entities extracts structured facts (revenue, risks, human
// capital) from the retrieval index with an LLM and persists them as
// the entity_data SQLite table queried by the agent.
package entities

import "fmt"

// Example is one few-shot pair shown to the model: document excerpts
// and the JSON the model should have produced for them.
type Example struct {
	Excerpts string
	Output   string
}

// Definition describes one entity to extract per (company, year).
type Definition struct {
	Name          string
	Description   string
	queryTemplate string // retrieval query, company then year
	Schema        string // serialized JSON schema of the expected output
	Examples      []Example
}

// Query renders the retrieval query used to gather excerpts for this
// entity.
func (d Definition) Query(company, year string) string {
	return fmt.Sprintf(d.queryTemplate, company, year)
}

// Catalog lists every entity the pipeline extracts.
var Catalog = []Definition{
	{
		Name:          "revenue",
		Description:   "Total income from goods sold or services.",
		queryTemplate: "What is the total revenue for %s in %s?",
		Schema:        revenueSchema,
		Examples: []Example{
			{
				Excerpts: "Page 20 - After the 10% increase in the number of customers, the sales for Company Inc in 2019 was $513,983 million.",
				Output: `{
  "revenue": 324483000000,
  "revenue_reasoning": "The sales for Company Inc in 2019 was $324,483 million.",
  "revenue_unit": "USD",
  "revenue_unit_reasoning": "The financial report is in US dollars as stated on page 20."
}`,
			},
		},
	},
	{
		Name:          "risks",
		Description:   "Summary of risks.",
		queryTemplate: "What are the main risks for %s in %s?",
		Schema:        risksSchema,
		Examples: []Example{
			{
				Excerpts: "Competition continues to intensify, including with the development of new business models and the entry of new and well-funded competitors.",
				Output: `{
  "risks": "The main risks are: \n* Competition from new entrants\n* Increased competition because of new technologies, ",
  "risks_reasoning": "Competition continues to intensify, including the development of new business models."
}`,
			},
		},
	},
	{
		Name:          "human_capital",
		Description:   "Total number of employees.",
		queryTemplate: "What is the total number of employees for %s in %s?",
		Schema:        humanCapitalSchema,
		Examples: []Example{
			{
				Excerpts: "Despite the COVID-19 pandemic, In 2019, Company Inc employed 349,329 employees worldwide.",
				Output: `{
  "human_capital": 349329,
  "human_capital_reasoning": "In 2019, Company Inc employed 349,329 employees worldwide."
}`,
			},
		},
	},
}

const revenueSchema = `{
  "title": "RevenueEntity",
  "type": "object",
  "properties": {
    "revenue": {
      "title": "Revenue",
      "description": "Total income from goods sold or services provided.",
      "type": "number"
    },
    "revenue_reasoning": {
      "title": "Revenue Reasoning",
      "description": "Text from the document used to infer the revenue value.",
      "type": "string"
    },
    "revenue_unit": {
      "title": "Revenue Unit",
      "description": "Unit of revenue using ISO alphabetic code.",
      "type": "string"
    },
    "revenue_unit_reasoning": {
      "title": "Revenue Unit Reasoning",
      "description": "Text used to infer the revenue unit.",
      "type": "string"
    }
  },
  "required": ["revenue", "revenue_reasoning", "revenue_unit", "revenue_unit_reasoning"]
}`

const risksSchema = `{
  "title": "RisksEntity",
  "type": "object",
  "properties": {
    "risks": {
      "title": "Risks",
      "description": "Summary of risks.",
      "type": "string"
    },
    "risks_reasoning": {
      "title": "Risks Reasoning",
      "description": "Text used to infer the risks.",
      "type": "string"
    }
  },
  "required": ["risks", "risks_reasoning"]
}`

const humanCapitalSchema = `{
  "title": "HumanCapitalEntity",
  "type": "object",
  "properties": {
    "human_capital": {
      "title": "Human Capital",
      "description": "Total number of employees.",
      "type": "integer"
    },
    "human_capital_reasoning": {
      "title": "Human Capital Reasoning",
      "description": "Text used to infer the human capital.",
      "type": "string"
    }
  },
  "required": ["human_capital", "human_capital_reasoning"]
}`
