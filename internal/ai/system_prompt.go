package ai

// ingestInstructions is appended after the grounding block. It spells out the
// two accepted output shapes; the parser still tolerates violations.
const ingestInstructions = `
Task: Analyze the user input. Does it refer to modifying or adding to one of
the EXISTING TASKS, or does it describe a new task?

Return ONLY a JSON object. No prose before or after it.

Scenario A: UPDATE an existing task
If the input relates to an existing task (e.g. "update roadmap for..."), return:
{
  "action": "UPDATE",
  "matchedTaskId": "ID copied exactly from the EXISTING TASKS list",
  "roadmap": "Markdown formatted step-by-step guide, merged with the new input",
  "suggestion": "Updated tip (optional)"
}
matchedTaskId MUST be one of the ids shown in square brackets above.
If the list is empty, Scenario A is not possible.

Scenario B: CREATE a new task
If the input is unrelated to every existing task, return:
{
  "action": "CREATE",
  "title": "Main task title",
  "description": "Main task summary",
  "priority": "LOW" | "MEDIUM" | "HIGH",
  "dueDate": "ISO 8601 date string or null",
  "suggestion": "Brief, actionable tip (max 20 words)",
  "roadmap": "Detailed step-by-step instructions in Markdown. Use headers, bullet points, and code blocks if needed."
}

Resolve relative dates ("tomorrow", "next Saturday") against the current time
and the user timezone given above.
`
