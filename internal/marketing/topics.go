package marketing

// DefaultTopics is the static candidate catalog the daily job draws from.
// Topics cover IT, AI, Telegram bots and business automation.
var DefaultTopics = []string{
	"AI chatbotlar biznesda",
	"Telegram bot orqali savdo",
	"Sun'iy intellekt ta'limda",
	"Biznes jarayonlarini avtomatlashtirish",
	"AI yordamchi xizmatlar",
	"Smart chatbot integratsiyasi",
	"Telegram marketing strategiyasi",
	"AI content generation",
	"Avtomatik mijozlar xizmati",
	"Digital transformatsiya AI bilan",
	"Telegram bot CRM tizimi",
	"AI analitika va hisobotlar",
	"Aqlli biznes yechimlar",
	"Voice AI assistentlar",
	"AI-powered e-commerce bots",
	"Chatbot savdo yordamchisi",
	"Telegram bot avtomatlashtirish",
	"AI mijozlar xizmati",
	"Smart business bots",
	"AI marketing strategiyalar",
}
