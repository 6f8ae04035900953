// Package prompt centralizes all prompt text for the generation
// pipeline. Builders compose ticket context, profile constraints, and
// task instructions into system/user message pairs. Stateless —
// all state comes from parameters.
package prompt

// separator is a visual delimiter for prompt sections.
const separator = "═══════════════════════════════════════════════════════════════════════════════"

// jsonOnlyInstruction closes every structured-output prompt.
const jsonOnlyInstruction = `IMPORTANT: Respond with ONLY raw JSON. Do NOT wrap it in markdown code fences. Just the JSON value.`

// summarySystemPrompt is the system prompt for ticket summary generation.
const summarySystemPrompt = `You are a senior QA analyst. You distill issue-tracker tickets into a concise problem/solution/context digest that a tester can absorb in under a minute. Only state facts present in the ticket; never invent requirements.`

// summaryUserTemplate is the user prompt for ticket summary generation.
// %s = ticket context.
const summaryUserTemplate = `Summarize the following ticket for QA purposes.

%s

Produce a JSON object:
{
  "problem": "what is broken or missing, from the user's perspective",
  "solution": "what the ticket proposes or implements",
  "context": "surrounding detail a tester needs: affected areas, environments, constraints"
}

Each field is 1-3 sentences of plain prose.

` + jsonOnlyInstruction

// criteriaSystemPrompt is the system prompt for acceptance criteria generation.
const criteriaSystemPrompt = `You are a senior QA analyst. You derive testable acceptance criteria from tickets. Every criterion must be verifiable by a tester without access to the codebase. Prioritize with MoSCoW: must, should, could.`

// criteriaUserTemplate is the user prompt for acceptance criteria generation.
// %s = ticket context, %s = category guidance.
const criteriaUserTemplate = `Derive acceptance criteria for the following ticket.

%s

%s

Produce a JSON array of 3-8 criteria:
[
  {
    "title": "short testable statement",
    "description": "how a tester verifies it, including expected outcome",
    "priority": "must|should|could",
    "category": "which QA category this belongs to",
    "testable": true
  }
]

Order criteria from most to least critical. Do not include "id" fields.

` + jsonOnlyInstruction

// gherkinSystemPrompt is the system prompt for Gherkin test case generation.
const gherkinSystemPrompt = `You are a senior QA engineer writing Gherkin scenarios. Given/When/Then steps are concrete and observable; tags name the QA categories a scenario covers.`

// gherkinUserTemplate is the user prompt for Gherkin test case generation.
// %s = ticket context, %s = category guidance.
const gherkinUserTemplate = `Write Gherkin test cases for the following ticket.

%s

%s

Produce a JSON array of 3-10 test cases:
[
  {
    "format": "gherkin",
    "scenario": "scenario name",
    "given": ["precondition"],
    "when": ["action"],
    "then": ["observable outcome"],
    "tags": ["category tags"],
    "category": "primary QA category",
    "priority": "high|medium|low",
    "estimated_time": "e.g. 5m"
  }
]

Do not include "id" fields.

` + jsonOnlyInstruction

// stepsSystemPrompt is the system prompt for step-by-step test case generation.
const stepsSystemPrompt = `You are a senior QA engineer writing numbered manual test procedures. Each step pairs one action with one expected result a tester can check.`

// stepsUserTemplate is the user prompt for step-by-step test case generation.
// %s = ticket context, %s = category guidance.
const stepsUserTemplate = `Write step-by-step test cases for the following ticket.

%s

%s

Produce a JSON array of 3-10 test cases:
[
  {
    "format": "steps",
    "title": "test case title",
    "objective": "what this test proves",
    "preconditions": ["required setup"],
    "steps": [
      {"step_number": 1, "action": "what the tester does", "expected_result": "what the tester sees"}
    ],
    "postconditions": ["state after the test"],
    "category": "primary QA category",
    "priority": "high|medium|low",
    "estimated_time": "e.g. 10m"
  }
]

Step numbers are sequential starting at 1. Do not include "id" fields.

` + jsonOnlyInstruction

// tableSystemPrompt is the system prompt for tabular test case generation.
const tableSystemPrompt = `You are a senior QA engineer writing compact tabular test cases: one row per check, each with a description and an expected outcome.`

// tableUserTemplate is the user prompt for tabular test case generation.
// %s = ticket context, %s = category guidance.
const tableUserTemplate = `Write tabular test cases for the following ticket.

%s

%s

Produce a JSON array of 3-10 test cases:
[
  {
    "format": "table",
    "title": "test case title",
    "description": "input and conditions under test",
    "expected_outcome": "observable result",
    "notes": "optional caveats",
    "category": "primary QA category",
    "priority": "high|medium|low",
    "estimated_time": "e.g. 3m"
  }
]

Do not include "id" fields.

` + jsonOnlyInstruction

// warningsSystemPrompt is the system prompt for configuration warning generation.
const warningsSystemPrompt = `You are a QA lead reviewing a ticket and its QA profile for testability problems: missing information, ambiguous requirements, profile/ticket mismatches, or risky gaps. You only flag real problems; an empty list is a valid answer.`

// warningsUserTemplate is the user prompt for configuration warning generation.
// %s = ticket context, %s = profile description.
const warningsUserTemplate = `Review this ticket and QA profile for testability problems.

%s

QA profile:
%s

Produce a JSON array (possibly empty):
[
  {
    "type": "short machine-readable kind, e.g. missing_environment",
    "title": "one-line problem statement",
    "message": "what is wrong and what it blocks",
    "recommendation": "what would resolve it",
    "severity": "low|medium|high"
  }
]

` + jsonOnlyInstruction

// intentSystemPrompt is the system prompt for intent classification.
const intentSystemPrompt = `You classify a user's latest message in a conversation about a QA document. The possible intents:
- modify_canvas: the user wants the document changed (add, remove, rewrite, fix content)
- provide_information: the user is answering a question or supplying missing detail
- ask_clarification: the user's request is too vague to act on
- off_topic: the message is unrelated to QA documentation or testing
- fallback: none of the above fits

Messages may be in English or Spanish.`

// intentUserTemplate is the user prompt for intent classification.
// %s = conversation excerpt, %s = document outline.
const intentUserTemplate = `Conversation (most recent last):
%s

Current document outline:
%s

Classify the LAST user message. Produce a JSON object:
{
  "intent": "modify_canvas|provide_information|ask_clarification|off_topic|fallback",
  "confidence": 0.0-1.0,
  "target_sections": ["ticket_summary|acceptance_criteria|test_cases|configuration_warnings|metadata"],
  "reasoning": "one sentence"
}

` + jsonOnlyInstruction

// sectionDetectSystemPrompt is the system prompt for AI section detection.
const sectionDetectSystemPrompt = `You determine which sections of a QA document a user's request targets. Valid sections: ticket_summary, acceptance_criteria, test_cases, configuration_warnings, metadata.`

// sectionDetectUserTemplate is the user prompt for AI section detection.
// %s = user message.
const sectionDetectUserTemplate = `User request:
%s

Produce a JSON object:
{
  "sections": ["..."],
  "confidence": 0.0-1.0
}

` + jsonOnlyInstruction

// clarificationSystemPrompt is the system prompt for clarification question generation.
const clarificationSystemPrompt = `You help a QA analyst sharpen a vague request about a QA document. You ask at most three short, concrete questions that would let the request be acted on. Reply in the language of the user's message.`

// clarificationUserTemplate is the user prompt for clarification generation.
// %s = conversation excerpt, %s = document outline.
const clarificationUserTemplate = `Conversation (most recent last):
%s

Current document outline:
%s

The last user request is too vague to act on. Ask the questions that would make it actionable. Plain prose, numbered list, no preamble.`

// contextualSystemPrompt is the system prompt for informational answers.
const contextualSystemPrompt = `You answer questions about a QA document and the ticket behind it. Ground every statement in the document or ticket content provided; say plainly when the answer is not in them. Reply in the language of the user's message.`

// contextualUserTemplate is the user prompt for informational answers.
// %s = conversation excerpt, %s = document content, %s = ticket context.
const contextualUserTemplate = `Conversation (most recent last):
%s

Current document:
%s

Original ticket:
%s

Answer the last user message.`

// regenerationSystemPrompt is the system prompt for whole-document regeneration.
const regenerationSystemPrompt = `You revise a QA document according to user feedback. You output the COMPLETE revised document, not a diff. Sections the feedback does not touch are preserved verbatim. You never drop required sections.`

// regenerationUserTemplate is the user prompt for whole-document regeneration.
// %s = current document JSON, %s = ticket context, %s = feedback, %s = structure instruction.
const regenerationUserTemplate = `Current document:
%s

Original ticket:
%s

User feedback to incorporate:
%s

%s

Produce the complete revised document as a JSON object with exactly these keys:
"ticket_summary", "configuration_warnings", "acceptance_criteria", "test_cases".
Keep the same shapes as the current document. Do not output "metadata".

` + jsonOnlyInstruction

// preserveStructureInstruction keeps existing IDs stable across regeneration.
const preserveStructureInstruction = `Preserve existing "id" values for every criterion and test case you keep. Leave "id" out for newly added entries.`

// freeStructureInstruction lets regeneration reshape the document.
const freeStructureInstruction = `You may restructure, merge, or remove entries as the feedback requires. Leave all "id" fields out.`

// suggestionSystemPrompt is the system prompt for suggestion enhancement.
const suggestionSystemPrompt = `You review a QA document and propose concrete improvements a tester could apply. Each suggestion names its type, the section it targets, and the effort it takes. You never repeat a suggestion that is already covered by the document.`

// suggestionUserTemplate is the user prompt for suggestion enhancement.
// %s = document content, %s = focus guidance, %d = maximum count.
const suggestionUserTemplate = `Current document:
%s

%s

Produce a JSON array of at most %d suggestions:
[
  {
    "suggestion_type": "edge_case|ui_verification|functional_test|clarification_question|negative_test|performance_test|security_test|accessibility_test|integration_test|data_validation|coverage_gap|improvement|security",
    "title": "one-line suggestion",
    "description": "what to add or change and why it matters",
    "priority": "high|medium|low",
    "target_section": "ticket_summary|acceptance_criteria|test_cases|configuration_warnings",
    "estimated_effort": "low|medium|high",
    "tags": ["free-form keywords"]
  }
]

` + jsonOnlyInstruction
