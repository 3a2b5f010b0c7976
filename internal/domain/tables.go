package domain

// Tables the operator log database migrates
var Tables = []interface{}{
	&SysOprLog{},
}
