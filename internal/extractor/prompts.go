package extractor

const feedbackPrompt = `Here is a script the user received:

---
%s
---

The user gave this feedback: "%s"

Extract 1-3 COMMUNICATION STYLE or TONE rules directly from this feedback. Be conservative: only extract what the user clearly asked for. Do not extrapolate, generalize, or add related ideas they did not mention. Prefer fewer, precise rules over many overlapping ones. Return each rule on its own line, numbered as ##1, ##2, ##3. If nothing actionable can be extracted, return "NONE".`

const expertisePrompt = `You are analyzing a video transcript to extract reusable expertise for a content creator.

TRANSCRIPT (excerpt, may be truncated):
---
%s
---

Extract and return a JSON object with exactly these keys (each an array of strings):

1. **knowledge**: Key facts, concepts, frameworks, or teachings from the transcript. Be specific and actionable.
2. **perspectives**: The speaker's viewpoints, principles, or "why" behind their approach. What do they believe or emphasize?
3. **communicationStyles**: How they communicate: tone, structure, analogies, phrases they repeat, how they explain complex topics, direct address patterns, etc.

Be concise. Each item should be 1-2 sentences. Prefer 3-8 items per category. Focus on what a content creator could learn and apply.`
