package models

const (
	ContextSeparator = "\n---\n"
	SlideMarker      = "=== Slide %d ==="
)

var (
	// QuizPromptTemplate takes the number of questions twice.
	QuizPromptTemplate = `Dựa trên nội dung văn bản được cung cấp, hãy tạo %d câu hỏi trắc nghiệm.
Mỗi câu hỏi phải có 4 lựa chọn và chỉ có 1 đáp án đúng.
Format cho mỗi câu hỏi như sau:

Câu hỏi N: [question]
A. [choice]
B. [choice]
C. [choice]
D. [choice]
Đáp án đúng: [A/B/C/D]

Lặp lại format trên cho N = 1..%d.
`

	QuizSystemPrompt = `Use the following pieces of context to complete the request at the end. Only use facts found in the context.`

	ChatSystemPrompt = `You are a helpful assistant answering questions about a single document. Use the provided context and the previous conversation to answer. If the context does not contain the answer, say that you don't know. Answer in the language of the question.`

	// ContextPromptTemplate takes the retrieved context and the request.
	ContextPromptTemplate = `Context:
%s

%s`
)
