package content

import (
	"github.com/gin-gonic/gin"
)

type Router struct {
	controller  *Controller
	requireAuth gin.HandlerFunc
}

func NewRouter(controller *Controller, requireAuth gin.HandlerFunc) *Router {
	return &Router{controller: controller, requireAuth: requireAuth}
}

func (r *Router) SetupRoutes(rg *gin.RouterGroup) {
	faq := rg.Group("/faq")
	faq.Use(r.requireAuth)
	{
		faq.GET("/read-all", r.controller.ListFAQs)
		faq.POST("/create", r.controller.CreateFAQ)
		faq.PATCH("/update/:id", r.controller.UpdateFAQ)
		faq.DELETE("/delete/:id", r.controller.DeleteFAQ)
	}

	policy := rg.Group("/privacy-policy")
	policy.Use(r.requireAuth)
	{
		policy.GET("/read", r.controller.GetPrivacyPolicy)
		policy.POST("/create", r.controller.CreatePrivacyPolicy)
		policy.PATCH("/update/:id", r.controller.UpdatePrivacyPolicy)
	}

	for _, page := range Pages {
		rg.GET(page.path(), r.requireAuth, r.controller.GetPage(page))
		rg.POST(page.path(), r.requireAuth, r.controller.SavePage(page))
	}
}
