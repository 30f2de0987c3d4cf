package template

type (
	// TemplateField is a config string that may contain template actions.
	// An undefined field evaluates to the empty string.
	TemplateField struct {
		template string
		defined  bool
	}
)

func NewTemplateField(template string) TemplateField {
	return TemplateField{template, true}
}

func (t TemplateField) Evaluate(ctx *TemplateContext) (string, error) {
	if !t.defined {
		return "", nil
	}
	return evaluate(t.template, ctx)
}

func (t TemplateField) IsDefined() bool {
	return t.defined
}

func (t TemplateField) String() string {
	return t.template
}

func (t *TemplateField) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var template string
	if err := unmarshal(&template); err != nil {
		return err
	}
	t.template = template
	t.defined = true
	return nil
}
