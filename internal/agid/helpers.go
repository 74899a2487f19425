package agid

import (
	"agid/internal/database"
	"agid/internal/dialplan"
	"agid/internal/fastagi"
)

// emitDialAction resuelve la acción de (evento, categoría, valor) y emite
// sus variables. La regla ausente sale como "none" con argumentos vacíos
func emitDialAction(a *fastagi.AGI, repo *database.Repository, event, category, categoryVal string) error {
	rule, err := repo.GetDialAction(event, category, categoryVal)
	if err != nil {
		return err
	}
	action := dialplan.DialAction{
		Event:    event,
		Category: category,
		Action:   rule.Action,
		Arg1:     rule.Arg1,
		Arg2:     rule.Arg2,
	}
	return action.SetVariables(a)
}

// rewriteCallerID aplica la regla de caller-id de la entidad si existe.
// Una regla ausente o una cadena configurada que no parsea se ignoran
func rewriteCallerID(a *fastagi.AGI, repo *database.Repository, typ, typeVal string, force bool) error {
	row, ok, err := repo.GetCallerIDRule(typ, typeVal)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	rule, ok := dialplan.NewRewriteRule(row.Mode, row.CallerDisplay)
	if !ok {
		return nil
	}
	return rule.Rewrite(a, force)
}
