package app

import (
	"github.com/specialistvlad/cvpipe/internal/registry"
	"github.com/specialistvlad/cvpipe/modules/analyzer"
	"github.com/specialistvlad/cvpipe/modules/checkout"
	"github.com/specialistvlad/cvpipe/modules/cleanup"
	"github.com/specialistvlad/cvpipe/modules/cmake"
	"github.com/specialistvlad/cvpipe/modules/coverage"
	"github.com/specialistvlad/cvpipe/modules/ctest"
	"github.com/specialistvlad/cvpipe/modules/ninja"
	"github.com/specialistvlad/cvpipe/modules/patch"
	"github.com/specialistvlad/cvpipe/modules/report"
)

// coreModules is the definitive list of all stage runners that are compiled
// into the cvpipe binary.
var coreModules = []registry.Module{
	&checkout.Module{},
	&patch.Module{},
	&cmake.Module{},
	&ninja.Module{},
	&ctest.Module{},
	&coverage.Module{},
	&analyzer.Module{},
	&cleanup.Module{},
	&report.Module{},
}
