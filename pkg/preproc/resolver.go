package preproc

import (
	"regexp"

	"github.com/yaklabco/sketchdiag/pkg/check"
	"github.com/yaklabco/sketchdiag/pkg/sketch"
)

// Top-level type declarations in a Java tab. Java tabs compile into the
// default package next to the sketch class.
var javaTypeDecl = regexp.MustCompile(
	`(?m)^(?:public\s+|abstract\s+|final\s+|sealed\s+|strictfp\s+)*(?:class|interface|enum|record)\s+([A-Za-z_$][\w$]*)`)

// sketchResolver adds the classes declared in Java tabs to a classpath
// resolver.
type sketchResolver struct {
	check.Resolver
	classes map[string]struct{}
}

func withJavaTabs(base check.Resolver, tabs []sketch.Tab) check.Resolver {
	classes := make(map[string]struct{})
	for _, tab := range tabs {
		if tab.Analyzable {
			continue
		}
		for _, m := range javaTypeDecl.FindAllStringSubmatch(tab.Text, -1) {
			classes[m[1]] = struct{}{}
		}
	}
	if len(classes) == 0 {
		return base
	}
	return &sketchResolver{Resolver: base, classes: classes}
}

func (r *sketchResolver) HasClass(qualified string) bool {
	if _, ok := r.classes[qualified]; ok {
		return true
	}
	return r.Resolver.HasClass(qualified)
}
