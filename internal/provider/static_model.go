package provider

import "github.com/cwbudde/go-cql/internal/types"

// StaticModelProvider is an in-memory ModelProvider backed by a fixed
// registry of class shapes, sufficient for tests and for CQL libraries that
// declare `using` a data model without needing a live FHIR StructureDefinition
// server behind it.
type StaticModelProvider struct {
	classes         map[string]types.Type // key: model+"."+name
	properties      map[string]types.Type // key: model+"."+typeName+"."+path
	defaultCodePath map[string]string      // key: model+"."+typeName
}

// NewStaticModelProvider returns an empty provider; use RegisterClass/
// RegisterProperty/SetDefaultCodePath to populate it.
func NewStaticModelProvider() *StaticModelProvider {
	return &StaticModelProvider{
		classes:         make(map[string]types.Type),
		properties:      make(map[string]types.Type),
		defaultCodePath: make(map[string]string),
	}
}

func (p *StaticModelProvider) RegisterClass(model, name string, t types.Type) {
	p.classes[model+"."+name] = t
}

func (p *StaticModelProvider) RegisterProperty(model, typeName, path string, t types.Type) {
	p.properties[model+"."+typeName+"."+path] = t
}

func (p *StaticModelProvider) SetDefaultCodePath(model, typeName, path string) {
	p.defaultCodePath[model+"."+typeName] = path
}

func (p *StaticModelProvider) ResolveType(model, name string) (types.Type, bool) {
	t, ok := p.classes[model+"."+name]
	return t, ok
}

func (p *StaticModelProvider) ResolveProperty(model, typeName, path string) (types.Type, bool) {
	t, ok := p.properties[model+"."+typeName+"."+path]
	return t, ok
}

func (p *StaticModelProvider) DefaultCodePath(model, typeName string) string {
	return p.defaultCodePath[model+"."+typeName]
}
