package agent

import "time"

// CurrentDate renders today's date for prompt grounding.
func CurrentDate() string {
	return time.Now().Format("January 2, 2006")
}

const queryWriterInstructions = `You are a research query writer.
Generate %d diverse, specific web search queries that together cover the research topic below.
Also detect the locale (e.g. "en-US", "zh-CN") of the topic so the final answer can match it.
Current date: %s

Topic: %s

# Response Format

Return the JSON object directly without any formatting or additional text. Make sure to answer in valid json and include all necessary properties:
{
  "type": "object",
  "properties": {
    "queries": {"type": "array", "items": {"type": "string"}, "description": "List of search queries"},
    "locale": {"type": "string", "description": "Locale of the research topic"}
  },
  "required": ["queries", "locale"]
}`

const webSearcherInstructions = `You are a web research assistant.
Write a verifiable, well-structured research narrative for the query below using the search results that follow.
Cite sources by their URL where used. Do not invent facts that are not supported by the results.
Current date: %s
Research topic: %s
Search query: %s
Search engines used: %s
`

const reflectionInstructions = `You are a research manager.
Review the research summaries gathered so far and judge whether they are sufficient to answer the topic comprehensively.
If insufficient, describe the knowledge gap and propose targeted follow-up search queries that would close it.
Current date: %s

Topic: %s

Summaries:
%s

# Response Format

Return the JSON object directly without any formatting or additional text. Make sure to answer in valid json and include all necessary properties:
{
  "type": "object",
  "properties": {
    "is_sufficient": {"type": "boolean"},
    "knowledge_gap": {"type": "string"},
    "follow_up_queries": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["is_sufficient", "knowledge_gap", "follow_up_queries"]
}`

const answerInstructions = `Write a comprehensive, well-cited answer to the research topic using the gathered summaries.
Cite every source you rely on by including its URL verbatim in the text.
Answer in the locale: %s
Current date: %s

Topic: %s

Summaries:
%s`
