package docs

// @title 意图发现服务 API
// @version 1.0
// @description 面向买家意图的潜在客户发现服务：产品分析、GTM话题与关键词生成、跨平台意图搜索、回复草稿生成
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /
// @schemes http https
