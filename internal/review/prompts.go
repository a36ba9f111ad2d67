package review

import (
	"encoding/json"
	"fmt"

	"github.com/justishika/clausecheck/internal/model"
)

// SystemPrompt frames every model call in this package.
const SystemPrompt = "You are a helpful legal-document assistant for contract review. " +
	"Be concise, factual, and produce JSON where requested. Do NOT give legal advice."

// Prompt-embedding caps, characters. Cost/latency controls.
const (
	SummaryPromptCap    = 8000
	ExtractionPromptCap = 16000
)

const summaryPromptTemplate = "Summarize the key purpose and business terms of the contract below " +
	"in 3-5 bullet points.\n\nContract:\n\n%s"

const extractionPromptTemplate = "Extract the following clauses from the contract text exactly as they " +
	"appear (or empty string if not present): Liability, Termination, Payment Terms, Confidentiality. " +
	"Return a JSON object with keys: Liability, Termination, PaymentTerms, Confidentiality. " +
	"For each, include the extracted clause text (or empty string). " +
	"Contract:\n\n%s"

const validationPromptTemplate = "You are given extracted clauses (JSON) and a checklist of compliance " +
	"rules (JSON). For each checklist key, return a JSON object mapping the checklist key to an object " +
	"with fields: status ('COMPLIANT', 'MISSING', 'RISKY'), reason (short), suggested_fix (short " +
	"suggestion), severity ('low','medium','high'). " +
	"Data:\n\nClauses: %s\n\nChecklist: %s"

const followupPromptTemplate = "Given the validation results and the extracted clause texts, generate a " +
	"JSON object with two keys: 'follow_up_questions' (list, up to 5 concise questions to ask the " +
	"counterparty) and 'suggested_rewrites' (list, up to 3 short suggested clause rewrites or snippets). " +
	"Validation Results:\n%s\n\nExtracted Clauses:\n%s"

const askPromptTemplate = "You are a legal AI assistant. Here is the contract and checklist context.\n" +
	"Contract: %s\n\nChecklist: %s\n\nUser question: %s"

func summaryPrompt(docText string) string {
	return fmt.Sprintf(summaryPromptTemplate, docText)
}

func extractionPrompt(docText string) string {
	return fmt.Sprintf(extractionPromptTemplate, docText)
}

func validationPrompt(clauses model.ClauseSet, checklist *model.Checklist) string {
	clausesJSON, _ := json.MarshalIndent(clauses, "", "  ")
	checklistJSON, _ := json.MarshalIndent(checklist.Map(), "", "  ")
	return fmt.Sprintf(validationPromptTemplate, clausesJSON, checklistJSON)
}

func followupPrompt(clauses model.ClauseSet, validation map[string]model.ValidationResult) string {
	validationJSON, _ := json.MarshalIndent(validation, "", "  ")
	clausesJSON, _ := json.MarshalIndent(clauses, "", "  ")
	return fmt.Sprintf(followupPromptTemplate, validationJSON, clausesJSON)
}

// AskPrompt builds the interactive Q&A prompt over document and
// checklist context.
func AskPrompt(docText, checklistText, question string) string {
	return fmt.Sprintf(askPromptTemplate, docText, checklistText, question)
}
