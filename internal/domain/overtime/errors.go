package overtime

import "errors"

var (
	ErrTemplateNotFound   = errors.New("overtime template not found")
	ErrTemplateNameExists = errors.New("overtime template name already exists")
)
