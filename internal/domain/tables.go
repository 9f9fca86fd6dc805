package domain

var Tables = []interface{}{
	&RegistryItem{},
	&Category{},
	&TerminalButton{},
}
