// Package revision применяет SQL-скрипты, связанные в граф ревизий.
//
// Каждый скрипт знает свою ревизию и ревизии, от которых он зависит, поэтому
// история может ветвиться и сливаться. Состояние базы хранится в таблице версий
// как набор примененных голов. Цель операции задается выражением: head, heads,
// base, идентификатор или его префикс, <id>@head, +N, -N.
package revision
