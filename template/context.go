package template

type (
	TemplateContext struct {
		variables map[string]interface{}
	}
)

func NewRootTemplateContext() *TemplateContext {
	return &TemplateContext{make(map[string]interface{})}
}

func (c *TemplateContext) Set(key string, value interface{}) {
	c.variables[key] = value
}

func (c *TemplateContext) flatten() map[string]interface{} {
	vars := make(map[string]interface{}, len(c.variables))
	for k, v := range c.variables {
		vars[k] = v
	}
	return vars
}
