package response

import "fmt"

// GenerationFailedAnswer is returned when the LLM call breaks mid-generation.
const GenerationFailedAnswer = "抱歉，生成答案时出现错误，请稍后重试。"

// NotFoundAnswer states that the edition holds nothing relevant.
func NotFoundAnswer(bookName, version string) string {
	return fmt.Sprintf("抱歉，在《%s》第%s版中没有找到与您问题相关的内容。", bookName, version)
}
