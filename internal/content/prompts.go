package content

import "fmt"

// TranscribePrompt is sent alongside the inline media payload.
const TranscribePrompt = `You are a professional transcriptionist.
Transcribe the audio from the provided file into clear, grammatically correct text.

STRICT REQUIREMENTS:
1. Punctuation: Ensure precise punctuation (commas, periods, question marks) to reflect the natural flow of speech.
2. Spacing: Pay careful attention to spacing between words and sentences.
3. Structure: Use paragraph breaks to separate distinct thoughts or changes in speakers.
4. Accuracy: Transcribe exactly what is said, but remove filler words (um, ah, like) if they disrupt readability, unless they are essential for context.
5. Output: Return ONLY the raw transcription text. Do not add any introductory or concluding remarks like "Here is the transcription".`

// RefineSystemPrompt is used by providers with a separate system channel.
const RefineSystemPrompt = `You are a helpful text editor assistant.
Please strictly follow the instruction to modify, summarize, translate, or correct the original text.
Return ONLY the resulting text. Do not include conversational filler like "Here is the summary".`

// RefinePrompt embeds the text and the user's instruction in a single prompt.
func RefinePrompt(text, instruction string) string {
	return fmt.Sprintf(`You are a helpful text editor assistant.

ORIGINAL TEXT:
%s

INSTRUCTION:
%s

Please strictly follow the instruction to modify, summarize, translate, or correct the original text.
Return ONLY the resulting text. Do not include conversational filler like "Here is the summary".`, text, instruction)
}

// refineUserPrompt is the user turn paired with RefineSystemPrompt.
func refineUserPrompt(text, instruction string) string {
	return fmt.Sprintf("ORIGINAL TEXT:\n%s\n\nINSTRUCTION:\n%s", text, instruction)
}
