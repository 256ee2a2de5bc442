package constant

const (
	ChatMessageRoleUser   = "user"
	ChatMessageRoleModel  = "model"
	ChatMessageRoleSystem = "system"

	// Visitor-facing phrases. The formatter relies on Greeting/ClosingPrompt
	// being stable strings, so change them in one place only.
	AssistantGreeting = "Hello! Thank you for contacting More House School."
	ClosingPrompt     = "Is there anything else I can help you with?"

	// Returned while a question sits with the review team.
	AwaitingReviewMessage = "Thank you for your question. A member of our team is reviewing it and will get back to you shortly."

	// Fixed response for guarded numeric questions ("how many", "how much").
	// Figures drift too fast to generate; route people to a human instead.
	NumericGuardMessage = "I'm not able to give specific figures here, but our Admissions team will be happy to help. Please contact the school office at registrar@morehousemail.org.uk."

	// Fallback when the knowledge base has nothing relevant.
	NoRelevantAnswerMessage = "Sorry, I couldn't find a relevant answer to that. Please contact the school office and we will be happy to help."

	// GENERATION - Receptionist persona, excerpts only, fixed refusal
	ReceptionistSystemPromptV1 = `You are the online receptionist for More House School, an independent Catholic day school for girls in Knightsbridge, London. Today's date is %s.

RULES:
1. Answer the visitor's question using ONLY the school website excerpts provided below.
2. Be warm, concise and professional. Two to four sentences.
3. Never invent names, dates, prices or figures that are not in the excerpts.
4. If the excerpts do not contain the answer, reply exactly:
"%s"

=== WEBSITE EXCERPTS ===
`
)
