// Package locale resolves user-facing strings for block types: the menu
// label and the empty-state placeholder.
package locale

import (
	"golang.org/x/text/language"

	"blockedit/internal/domain"
)

type catalog struct {
	labels       map[domain.BlockType]string
	placeholders map[domain.BlockType]string
}

var supported = []language.Tag{
	language.English, // first entry is the fallback
	language.Portuguese,
	language.Spanish,
}

var matcher = language.NewMatcher(supported)

var catalogs = []catalog{
	{
		labels: map[domain.BlockType]string{
			domain.BlockTypeParagraph:   "Text",
			domain.BlockTypeHeading1:    "Heading 1",
			domain.BlockTypeHeading2:    "Heading 2",
			domain.BlockTypeHeading3:    "Heading 3",
			domain.BlockTypeBulletList:  "Bulleted list",
			domain.BlockTypeOrderedList: "Numbered list",
			domain.BlockTypeCheckbox:    "To-do",
			domain.BlockTypeImage:       "Image",
			domain.BlockTypeCode:        "Code",
			domain.BlockTypeCallout:     "Callout",
			domain.BlockTypeDivider:     "Divider",
		},
		placeholders: map[domain.BlockType]string{
			domain.BlockTypeParagraph:   "Type '/' for commands",
			domain.BlockTypeHeading1:    "Heading 1",
			domain.BlockTypeHeading2:    "Heading 2",
			domain.BlockTypeHeading3:    "Heading 3",
			domain.BlockTypeBulletList:  "List item",
			domain.BlockTypeOrderedList: "List item",
			domain.BlockTypeCheckbox:    "To-do",
			domain.BlockTypeImage:       "Add a caption",
			domain.BlockTypeCode:        "Write some code",
			domain.BlockTypeCallout:     "Write a callout",
		},
	},
	{
		labels: map[domain.BlockType]string{
			domain.BlockTypeParagraph:   "Texto",
			domain.BlockTypeHeading1:    "Título 1",
			domain.BlockTypeHeading2:    "Título 2",
			domain.BlockTypeHeading3:    "Título 3",
			domain.BlockTypeBulletList:  "Lista com marcadores",
			domain.BlockTypeOrderedList: "Lista numerada",
			domain.BlockTypeCheckbox:    "Tarefa",
			domain.BlockTypeImage:       "Imagem",
			domain.BlockTypeCode:        "Código",
			domain.BlockTypeCallout:     "Destaque",
			domain.BlockTypeDivider:     "Divisor",
		},
		placeholders: map[domain.BlockType]string{
			domain.BlockTypeParagraph:   "Digite '/' para comandos",
			domain.BlockTypeHeading1:    "Título 1",
			domain.BlockTypeHeading2:    "Título 2",
			domain.BlockTypeHeading3:    "Título 3",
			domain.BlockTypeBulletList:  "Item da lista",
			domain.BlockTypeOrderedList: "Item da lista",
			domain.BlockTypeCheckbox:    "Tarefa",
			domain.BlockTypeImage:       "Adicione uma legenda",
			domain.BlockTypeCode:        "Escreva algum código",
			domain.BlockTypeCallout:     "Escreva um destaque",
		},
	},
	{
		labels: map[domain.BlockType]string{
			domain.BlockTypeParagraph:   "Texto",
			domain.BlockTypeHeading1:    "Encabezado 1",
			domain.BlockTypeHeading2:    "Encabezado 2",
			domain.BlockTypeHeading3:    "Encabezado 3",
			domain.BlockTypeBulletList:  "Lista con viñetas",
			domain.BlockTypeOrderedList: "Lista numerada",
			domain.BlockTypeCheckbox:    "Tarea",
			domain.BlockTypeImage:       "Imagen",
			domain.BlockTypeCode:        "Código",
			domain.BlockTypeCallout:     "Aviso",
			domain.BlockTypeDivider:     "Separador",
		},
		placeholders: map[domain.BlockType]string{
			domain.BlockTypeParagraph:   "Escribe '/' para comandos",
			domain.BlockTypeHeading1:    "Encabezado 1",
			domain.BlockTypeHeading2:    "Encabezado 2",
			domain.BlockTypeHeading3:    "Encabezado 3",
			domain.BlockTypeBulletList:  "Elemento de lista",
			domain.BlockTypeOrderedList: "Elemento de lista",
			domain.BlockTypeCheckbox:    "Tarea",
			domain.BlockTypeImage:       "Añade un pie de foto",
			domain.BlockTypeCode:        "Escribe código",
			domain.BlockTypeCallout:     "Escribe un aviso",
		},
	},
}

func lookup(loc string) catalog {
	_, idx := language.MatchStrings(matcher, loc)
	if idx < 0 || idx >= len(catalogs) {
		idx = 0
	}
	return catalogs[idx]
}

// PlaceholderFor returns the empty-state hint for a block of type t.
// Dividers have none.
func PlaceholderFor(t domain.BlockType, loc string) string {
	if p, ok := lookup(loc).placeholders[t]; ok {
		return p
	}
	return catalogs[0].placeholders[t]
}

// Label returns the display name of t.
func Label(t domain.BlockType, loc string) string {
	if l, ok := lookup(loc).labels[t]; ok {
		return l
	}
	if l, ok := catalogs[0].labels[t]; ok {
		return l
	}
	return string(t)
}

// Labeler returns a Label function bound to loc.
func Labeler(loc string) func(domain.BlockType) string {
	c := lookup(loc)
	return func(t domain.BlockType) string {
		if l, ok := c.labels[t]; ok {
			return l
		}
		return Label(t, "en")
	}
}
