// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	ResolutionFailedId Id = iota + 1
	EmitFailedId
	UsageId
	ConfigLoadFailedId
	DependencyCycleId
	OutputWriteFailedId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink
		extLinks []HttpLink // external links that might be useful for the user
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as terminal markdown. stylePath is a glamour
// style name ("dark", "light", "notty", ...) or a path to a style file.
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md += "\n\n## See also\n"
		for _, link := range append(i.DocLinks(), i.extLinks...) {
			md += "- <" + string(link) + ">\n"
		}
	}
	return render(md, stylePath)
}

var (
	render = glamour.Render

	resolutionFailedIssue = &Issue{
		id: ResolutionFailedId,
		mdMsg: `
# A module could not be resolved

modpack follows every ` + "`require(\"...\")`" + ` call starting from the entry file.
One of them did not lead to a module.

## Things you can try:
- Check the spelling of the reference shown above
- Relative references must start with ` + "`./`" + ` or ` + "`../`" + `
- Packages are looked up in ` + "`node_modules`" + ` directories from the requiring file up to the project root; run your package manager's install
- A directory is resolved through its ` + "`package.json`" + ` "main" field, then ` + "`index.js`" + `
- Extra file extensions can be probed with the ` + "`extensions`" + ` config field`,
		extLinks: []HttpLink{"https://nodejs.org/api/modules.html#all-together"},
	}

	emitFailedIssue = &Issue{
		id: EmitFailedId,
		mdMsg: `
# The bundle could not be produced

All modules were resolved, but linking them into one script failed.

## Things you can try:
- Make sure the namespace is not empty and has no empty dotted segments:
~~~
$ modpack --standalone MyLib src/index.js dist/bundle.js
~~~
- Check the ` + "`namespace`" + ` field of your config file`,
	}

	usageIssue = &Issue{
		id: UsageId,
		mdMsg: `
# Wrong number of arguments

modpack takes exactly two arguments: the entry file and the output file.

~~~
$ modpack src/index.js dist/bundle.js
~~~

Use ` + "`-`" + ` as the output file to write the bundle to standard output.`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or does not match the schema.

## Search locations (in order of precedence):
1. The file given with ` + "`--config`" + `
2. ` + "`modpack/config.cue`" + ` in your user configuration directory
3. ` + "`modpack.cue`" + ` in the current directory

## Things you can try:
- Print the effective configuration:
~~~
$ modpack config show
~~~
- Write a fresh default file:
~~~
$ modpack config init
~~~
- Environment variables such as ` + "`MODPACK_WORKERS=8`" + ` override file values`,
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Dependency cycle detected

Two or more modules require each other. With ` + "`cycles: \"error\"`" + ` this aborts the build.

CommonJS tolerates cycles: a module that requires one of its ancestors receives
that ancestor's exports as they are at that moment, usually incomplete.

## Things you can try:
- Move the shared code into a third module both can require
- Require the dependency lazily inside the function that needs it
- Accept the cycle with ` + "`cycles: \"warn\"`" + ` or ` + "`cycles: \"allow\"`" + ` in your config`,
	}

	outputWriteFailedIssue = &Issue{
		id: OutputWriteFailedId,
		mdMsg: `
# The bundle could not be written

The bundle was built but the output file could not be created.
Existing output was left untouched.

## Things you can try:
- Check that the output directory exists and is writable
- Write to standard output instead and redirect:
~~~
$ modpack src/index.js - > dist/bundle.js
~~~`,
	}

	issues = map[Id]*Issue{
		resolutionFailedIssue.Id():  resolutionFailedIssue,
		emitFailedIssue.Id():        emitFailedIssue,
		usageIssue.Id():             usageIssue,
		configLoadFailedIssue.Id():  configLoadFailedIssue,
		dependencyCycleIssue.Id():   dependencyCycleIssue,
		outputWriteFailedIssue.Id(): outputWriteFailedIssue,
	}
)

// Values returns every issue, ordered by ID.
func Values() []*Issue {
	values := maps.Values(issues)
	slices.SortFunc(values, func(a, b *Issue) int {
		return cmp.Compare(a.id, b.id)
	})
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}
