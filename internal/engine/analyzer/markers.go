package analyzer

import "sort"

// DefaultFrameworkMarkers are annotation descriptors whose presence means a
// framework instantiates the class by classpath scanning.
var DefaultFrameworkMarkers = []string{
	"Lorg/springframework/stereotype/Controller;",
	"Lorg/springframework/web/bind/annotation/RestController;",
	"Lorg/springframework/stereotype/Service;",
	"Lorg/springframework/stereotype/Component;",
	"Lorg/springframework/stereotype/Repository;",
	"Lorg/springframework/boot/autoconfigure/SpringBootApplication;",
	"Lorg/springframework/context/annotation/Configuration;",
	"Ljavax/ws/rs/Path;",
	"Ljavax/ws/rs/Provider;",
	"Ljakarta/ws/rs/Path;",
	"Ljakarta/ws/rs/Provider;",
}

// MarkerSet matches annotation descriptors by exact string equality.
type MarkerSet struct {
	set map[string]struct{}
}

func NewMarkerSet(descriptors ...string) MarkerSet {
	m := MarkerSet{set: make(map[string]struct{}, len(descriptors))}
	for _, d := range descriptors {
		m.set[d] = struct{}{}
	}
	return m
}

// DefaultMarkerSet returns the built-in markers plus any extra descriptors.
func DefaultMarkerSet(extra ...string) MarkerSet {
	all := make([]string, 0, len(DefaultFrameworkMarkers)+len(extra))
	all = append(all, DefaultFrameworkMarkers...)
	all = append(all, extra...)
	return NewMarkerSet(all...)
}

func (m MarkerSet) Contains(descriptor string) bool {
	_, ok := m.set[descriptor]
	return ok
}

func (m MarkerSet) Len() int {
	return len(m.set)
}

func (m MarkerSet) Descriptors() []string {
	out := make([]string, 0, len(m.set))
	for d := range m.set {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}
