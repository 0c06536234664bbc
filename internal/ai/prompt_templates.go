package ai

import "fmt"

// BlogPrompt builds the article prompt for one topic. The constraints
// (length, tag whitelist, keywords, closing line) are requested here but not
// enforced on the response.
func BlogPrompt(topic string) string {
	return fmt.Sprintf(`"%s" mavzusida o'zbek tilida professional SEO blog maqolasi yozing.

Talablar:
- 600-700 so'z
- 5-6 paragraf
- Jozibador va SEO-optimallashtirilgan sarlavha
- Kalit so'zlar: AI, bot, avtomatlashtirish, SmartBot.uz
- Paragraflar qisqa va tushunarli
- Professional uslubda
- Oxirida majburiy: "SmartBot.uz — aqlli yechimlar, zamonaviy biznes uchun"

Maqolani HTML formatida qaytaring, faqat <h2>, <p>, <ul>, <li> teglaridan foydalaning.`, topic)
}
